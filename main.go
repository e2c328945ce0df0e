package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"walletledger/config"
	"walletledger/database"
	"walletledger/ledger"
	"walletledger/middleware"
	"walletledger/notify"
	"walletledger/router"
	"walletledger/service"

	"github.com/redis/go-redis/v9"
)

// @title 钱包账本 API
// @version 1.0
// @description 钱包记账服务：收支记录、分类预算、统计与转账
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Println("钱包账本 v1.0.0")
		return
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Printf("命令行指定端口: %s", port)
	}

	config.PrintConfig()

	if err := database.Init(cfg); err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}

	middleware.InitJWT(cfg)

	// 启用 redis 通知通道时，转账限流也改用 Redis 计数，多实例共享
	var redisClient *redis.Client
	if cfg.Notify.HasSink("redis") && cfg.Redis.Host != "" {
		redisClient = notify.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		defer redisClient.Close()
	}

	// 邮件通道需要按用户名查邮箱，先用无通知的服务做解析
	resolver := ledger.NewService(database.DB, nil)
	sinks, closers := buildSinks(cfg, redisClient, resolver.EmailOf)
	dispatcher := notify.NewDispatcher(cfg.Notify.QueueSize, sinks...)

	svc := ledger.NewService(database.DB, dispatcher)

	var transferLimiter middleware.Limiter
	if redisClient != nil {
		transferLimiter = middleware.NewRedisLimiter(redisClient, "walletledger:ratelimit:transfer", 30, time.Minute)
	}

	r := router.SetupRouter(cfg, svc, transferLimiter)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: r,
	}

	log.Printf("==========================================")
	log.Printf("  💰 钱包账本已启动")
	log.Printf("==========================================")
	log.Printf("  Swagger:  http://localhost%s/swagger/index.html", cfg.Server.Port)
	log.Printf("  API接口:  http://localhost%s/api/v1/", cfg.Server.Port)
	log.Printf("==========================================")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("服务器关闭异常: %v", err)
	}

	// 先排空通知队列，再关闭各通道连接
	dispatcher.Close()
	if dropped := dispatcher.Dropped(); dropped > 0 {
		log.Printf("运行期间共丢弃 %d 条通知", dropped)
	}
	for _, c := range closers {
		if err := c(); err != nil {
			log.Printf("关闭通知通道失败: %v", err)
		}
	}
	log.Println("服务器已退出")
}

// buildSinks 按配置创建通知通道，创建失败的通道只记录日志并跳过
func buildSinks(cfg *config.Config, redisClient *redis.Client, resolve notify.AddressResolver) ([]notify.Sink, []func() error) {
	var (
		sinks   []notify.Sink
		closers []func() error
	)
	n := cfg.Notify

	if n.HasSink("log") {
		sinks = append(sinks, notify.LogSink{})
	}
	if n.HasSink("email") {
		if cfg.Email.Enabled {
			sinks = append(sinks, notify.NewEmailSink(service.NewEmailService(&cfg.Email), resolve, n.EmailTo))
		} else {
			log.Println("警告: 已配置 email 通知通道，但邮件服务未启用")
		}
	}
	if n.HasSink("redis") {
		if redisClient != nil {
			sinks = append(sinks, notify.NewRedisSink(redisClient, cfg.Redis.Channel))
		} else {
			log.Println("警告: 已配置 redis 通知通道，但未配置 Redis 地址")
		}
	}
	if n.HasSink("amqp") {
		s, err := notify.NewAMQPSink(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			log.Printf("警告: 连接 RabbitMQ 失败，amqp 通知通道不可用: %v", err)
		} else {
			sinks = append(sinks, s)
			closers = append(closers, s.Close)
		}
	}
	return sinks, closers
}
