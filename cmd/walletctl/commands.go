package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"walletledger/export"
	"walletledger/ledger"
	"walletledger/models"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func (a *app) walletOf(cmd *cobra.Command, username string) (*models.Wallet, error) {
	return a.svc.WalletByUsername(cmd.Context(), username)
}

func (a *app) registerCmd() *cobra.Command {
	var password, email string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "注册用户并创建钱包",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 6 {
				return errors.New("密码至少 6 位")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("密码加密失败: %w", err)
			}
			user, err := a.svc.Register(cmd.Context(), args[0], string(hash), email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已注册用户 %s（钱包 #%d）\n", user.Username, user.Wallet.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "登录密码")
	cmd.Flags().StringVar(&email, "email", "", "提醒邮箱（可选）")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) transactionCmd(use, short string, typ models.TransactionType, defaultCategory string) *cobra.Command {
	var category, description string
	cmd := &cobra.Command{
		Use:   use + " <username> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			wallet, err := a.walletOf(cmd, args[0])
			if err != nil {
				return err
			}
			res, err := a.svc.ApplyTransaction(cmd.Context(), wallet.ID, ledger.TransactionInput{
				Type:        typ,
				Amount:      amount,
				Category:    category,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s，余额 %s\n",
				res.Transaction.Type, export.Money(res.Transaction.Amount), res.Transaction.Category, export.Money(res.Balance))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", defaultCategory, "类别")
	cmd.Flags().StringVar(&description, "desc", "", "描述")
	return cmd
}

func (a *app) depositCmd() *cobra.Command {
	return a.transactionCmd("deposit", "记一笔收入", models.TransactionIncome, "Salary")
}

func (a *app) spendCmd() *cobra.Command {
	cmd := a.transactionCmd("spend", "记一笔支出", models.TransactionExpense, "")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	var (
		limit    int
		category string
	)
	cmd := &cobra.Command{
		Use:   "history <username>",
		Short: "查看最近的交易记录",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wallet, err := a.walletOf(cmd, args[0])
			if err != nil {
				return err
			}
			list, total, err := a.svc.ListTransactions(cmd.Context(), wallet.ID, ledger.TransactionQuery{
				PageSize: limit,
				Category: category,
			})
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\t时间\t类型\t金额\t类别\t余额\t描述")
			for _, t := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.CreatedAt.Format("2006-01-02 15:04"), t.Type, export.Money(t.Amount),
					t.Category, export.Money(t.BalanceAfter), t.Description)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "共 %d 条，显示 %d 条\n", total, len(list))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "显示条数（最多 100）")
	cmd.Flags().StringVar(&category, "category", "", "按类别筛选")
	return cmd
}

func (a *app) budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "管理分类预算",
	}

	set := &cobra.Command{
		Use:   "set <username> <category> <limit>",
		Short: "设置或修改预算上限",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			wallet, err := a.walletOf(cmd, args[0])
			if err != nil {
				return err
			}
			b, err := a.svc.SetBudget(cmd.Context(), wallet.ID, args[1], limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "预算 %s：上限 %s，已支出 %s\n", b.Category, export.Money(b.LimitAmount), export.Money(b.CurrentSpent))
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <username> <category>",
		Short: "删除预算",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wallet, err := a.walletOf(cmd, args[0])
			if err != nil {
				return err
			}
			if err := a.svc.DeleteBudget(cmd.Context(), wallet.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已删除预算 %s\n", strings.TrimSpace(args[1]))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list <username>",
		Short: "列出预算",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wallet, err := a.walletOf(cmd, args[0])
			if err != nil {
				return err
			}
			budgets, err := a.svc.ListBudgets(cmd.Context(), wallet.ID)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "类别\t上限\t已支出\t状态")
			for _, b := range budgets {
				state := "正常"
				if b.Exceeded() {
					state = "超支"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.Category, export.Money(b.LimitAmount), export.Money(b.CurrentSpent), state)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(set, del, list)
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	var (
		categories []string
		start, end string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "stats <username>",
		Short: "收支统计与预算执行情况",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := ledger.ParseDateRange(start, end, time.Local)
			if err != nil {
				return err
			}
			wallet, err := a.walletOf(cmd, args[0])
			if err != nil {
				return err
			}
			stats, err := a.svc.GetStatistics(cmd.Context(), wallet.ID, ledger.StatisticsFilter{
				Categories: categories,
				Start:      from,
				End:        to,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return export.WriteJSON(cmd.OutOrStdout(), export.NewReport(stats, from, to, time.Now()))
			}
			return printStatistics(cmd.OutOrStdout(), stats)
		},
	}
	cmd.Flags().StringSliceVar(&categories, "category", nil, "只统计这些类别，可重复或用逗号分隔")
	cmd.Flags().StringVar(&start, "start", "", "开始日期 (2024-01-01)")
	cmd.Flags().StringVar(&end, "end", "", "结束日期 (2024-12-31)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 报告输出")
	return cmd
}

func printStatistics(w io.Writer, stats *ledger.Statistics) error {
	fmt.Fprintf(w, "总收入 %s  总支出 %s  结余 %s\n",
		export.Money(stats.TotalIncome), export.Money(stats.TotalExpense), export.Money(stats.Balance))

	tw := newTable(w)
	fmt.Fprintln(tw, "\n类别\t收入\t支出")
	for _, c := range categoryUnion(stats) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c, export.Money(stats.IncomeByCategory[c]), export.Money(stats.ExpenseByCategory[c]))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(stats.BudgetStatus) == 0 {
		return nil
	}
	names := make([]string, 0, len(stats.BudgetStatus))
	for name := range stats.BudgetStatus {
		names = append(names, name)
	}
	sort.Strings(names)

	tw = newTable(w)
	fmt.Fprintln(tw, "\n预算\t上限\t已支出\t剩余\t使用率")
	for _, name := range names {
		s := stats.BudgetStatus[name]
		mark := ""
		if s.Exceeded {
			mark = " !"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f%%%s\n", name,
			export.Money(s.LimitAmount), export.Money(s.CurrentSpent), export.Money(s.Remaining), s.UsagePercentage, mark)
	}
	return tw.Flush()
}

func categoryUnion(stats *ledger.Statistics) []string {
	seen := make(map[string]struct{}, len(stats.IncomeByCategory)+len(stats.ExpenseByCategory))
	for c := range stats.IncomeByCategory {
		seen[c] = struct{}{}
	}
	for c := range stats.ExpenseByCategory {
		seen[c] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (a *app) transferCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "transfer <from> <to> <amount>",
		Short: "在两个用户的钱包之间转账",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			res, err := a.svc.Transfer(cmd.Context(), args[0], args[1], amount, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "转账成功 %s，%s 余额 %s（编号 %s）\n",
				export.Money(amount), args[0], export.Money(res.SenderBalance), res.Reference)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "desc", "", "转账说明")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var format, output, start, end string
	cmd := &cobra.Command{
		Use:   "export <username>",
		Short: "导出账单（json / csv / excel）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := ledger.ParseDateRange(start, end, time.Local)
			if err != nil {
				return err
			}
			wallet, err := a.walletOf(cmd, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			buf := new(bytes.Buffer)
			switch strings.ToLower(format) {
			case "json":
				stats, err := a.svc.GetStatistics(ctx, wallet.ID, ledger.StatisticsFilter{Start: from, End: to})
				if err != nil {
					return err
				}
				err = export.WriteJSON(buf, export.NewReport(stats, from, to, time.Now()))
				if err != nil {
					return err
				}
			case "csv":
				list, err := a.svc.AllTransactions(ctx, wallet.ID, from, to)
				if err != nil {
					return err
				}
				if err := export.WriteCSV(buf, list); err != nil {
					return err
				}
			case "excel", "xlsx":
				list, err := a.svc.AllTransactions(ctx, wallet.ID, from, to)
				if err != nil {
					return err
				}
				stats, err := a.svc.GetStatistics(ctx, wallet.ID, ledger.StatisticsFilter{Start: from, End: to})
				if err != nil {
					return err
				}
				if err := export.WriteExcel(buf, list, stats); err != nil {
					return err
				}
			default:
				return fmt.Errorf("不支持的导出格式: %s", format)
			}

			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("写入文件失败: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "已导出到 %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "导出格式: json / csv / excel")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件，默认写到标准输出")
	cmd.Flags().StringVar(&start, "start", "", "开始日期 (2024-01-01)")
	cmd.Flags().StringVar(&end, "end", "", "结束日期 (2024-12-31)")
	return cmd
}
