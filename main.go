package main

import (
	"flag"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/dhanji/frame/config"
	"github.com/dhanji/frame/imap"
	"github.com/dhanji/frame/mailstore"
	"github.com/dhanji/frame/smtp"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Functions

// initLogger initializes a JSON gokit-logger set
// to the according log level supplied via cli flag.
func initLogger(loglevel string) log.Logger {

	logger := log.NewJSONLogger(log.NewSyncWriter(os.Stdout))
	logger = log.With(logger,
		"ts", log.DefaultTimestampUTC,
		"caller", log.DefaultCaller,
	)

	switch strings.ToLower(loglevel) {
	case "info":
		logger = level.NewFilter(logger, level.AllowInfo())
	case "warn":
		logger = level.NewFilter(logger, level.AllowWarn())
	case "error":
		logger = level.NewFilter(logger, level.AllowError())
	default:
		logger = level.NewFilter(logger, level.AllowDebug())
	}

	return logger
}

func main() {

	// Set CPUs usable to all available.
	runtime.GOMAXPROCS(runtime.NumCPU())

	// Parse command-line flag that defines a config path.
	configFlag := flag.String("config", "config.toml", "Provide path to configuration file in TOML syntax.")
	loglevelFlag := flag.String("loglevel", "debug", "This flag sets the default logging level.")
	flag.Parse()

	logger := initLogger(*loglevelFlag)

	// Read configuration from file and apply
	// host-specific environment overrides.
	conf, err := config.LoadConfig(*configFlag)
	if err != nil {
		level.Error(logger).Log(
			"msg", "failed to load the config", "err", err,
		)
		os.Exit(1)
	}
	conf.ApplyEnv()

	// The store is the only state shared between the
	// two protocol endpoints.
	store := mailstore.NewStore()

	metrics := NewMockMetrics(conf.Prometheus.ListenAddr)

	// Assemble the IMAP endpoint: core handlers wrapped
	// with logging and metrics.
	imapLogger := log.With(logger, "service", "imap")
	var imapService imap.Service
	imapService = imap.NewService(imapLogger, store)
	imapService = imap.NewLoggingService(imapService, imapLogger)
	imapService = imap.NewMetricsService(imapService, metrics.IMAP.Logins, metrics.IMAP.Logouts)
	imapServer := imap.NewServer(imapLogger, imapService)

	// Assemble the SMTP endpoint the same way.
	smtpLogger := log.With(logger, "service", "smtp")
	var smtpService smtp.Service
	smtpService = smtp.NewService(smtpLogger, store)
	smtpService = smtp.NewLoggingService(smtpService, smtpLogger)
	smtpService = smtp.NewMetricsService(smtpService, metrics.SMTP.Accepted)
	smtpServer := smtp.NewServer(smtpLogger, smtpService)

	// An unrecoverable bind failure at startup is the
	// only process-fatal error.
	imapListener, err := net.Listen("tcp", conf.IMAP.ListenAddr)
	if err != nil {
		level.Error(logger).Log(
			"msg", "failed to bind IMAP listener", "addr", conf.IMAP.ListenAddr, "err", err,
		)
		os.Exit(2)
	}
	defer imapListener.Close()

	smtpListener, err := net.Listen("tcp", conf.SMTP.ListenAddr)
	if err != nil {
		level.Error(logger).Log(
			"msg", "failed to bind SMTP listener", "addr", conf.SMTP.ListenAddr, "err", err,
		)
		os.Exit(3)
	}
	defer smtpListener.Close()

	level.Info(logger).Log("msg", "mock IMAP server listening", "addr", conf.IMAP.ListenAddr)
	level.Info(logger).Log("msg", "mock SMTP server listening", "addr", conf.SMTP.ListenAddr)

	// Loop on incoming requests at both endpoints.
	runErr := make(chan error, 2)
	go func() {
		runErr <- imapServer.Run(imapListener, conf.IMAP.Greeting)
	}()
	go func() {
		runErr <- smtpServer.Run(smtpListener, conf.SMTP.Greeting)
	}()

	go runPromHTTP(logger, conf.Prometheus.ListenAddr)

	// Block until interrupted or until one of the
	// acceptors fails.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		level.Info(logger).Log("msg", "received signal, shutting down", "signal", sig.String())
	case err := <-runErr:
		level.Error(logger).Log("msg", "acceptor failed", "err", err)
		os.Exit(4)
	}
}
