// walletctl 钱包账本命令行工具，直接操作数据库，与 HTTP 服务共用同一套记账逻辑。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"walletledger/config"
	"walletledger/database"
	"walletledger/ledger"
	"walletledger/notify"

	"github.com/spf13/cobra"
)

var version = "dev"

// bootstrapFunc 根据配置文件路径创建记账服务，返回的 cleanup 在命令结束时调用
type bootstrapFunc func(configPath string) (svc *ledger.Service, cleanup func(), err error)

// defaultBootstrap 加载配置、连接数据库，通知只写日志
func defaultBootstrap(configPath string) (*ledger.Service, func(), error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Init(cfg); err != nil {
		return nil, nil, fmt.Errorf("数据库初始化失败: %w", err)
	}
	dispatcher := notify.NewDispatcher(cfg.Notify.QueueSize, notify.LogSink{})
	return ledger.NewService(database.DB, dispatcher), dispatcher.Close, nil
}

// app 命令共享的运行状态
type app struct {
	bootstrap bootstrapFunc
	cfgFile   string
	svc       *ledger.Service
	cleanup   func()
}

func newRootCmd(bootstrap bootstrapFunc) *cobra.Command {
	a := &app{bootstrap: bootstrap}

	root := &cobra.Command{
		Use:           "walletctl",
		Short:         "钱包账本命令行工具",
		Long:          "walletctl 直接读写账本数据库：注册用户、记账、设置预算、统计、转账与导出。",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			svc, cleanup, err := a.bootstrap(a.cfgFile)
			if err != nil {
				return err
			}
			a.svc = svc
			a.cleanup = cleanup
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.cleanup != nil {
				a.cleanup()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "外部配置文件路径（可选）")

	root.AddCommand(
		a.registerCmd(),
		a.depositCmd(),
		a.spendCmd(),
		a.historyCmd(),
		a.budgetCmd(),
		a.statsCmd(),
		a.transferCmd(),
		a.exportCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(defaultBootstrap).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}
