package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/oasislabs/baqend-connector/config"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/oauth"
)

var RootContext = context.Background()

func main() {
	var cfg Config
	parser, err := config.Generate(&cfg)
	if err != nil {
		fmt.Println("failed to generate configurations: ", err.Error())
		os.Exit(1)
	}

	if err := parser.Parse(); err == config.ErrHelpRequested {
		os.Exit(0)
	} else if err != nil {
		fmt.Println("failed to configure server: ", err.Error())
		_ = parser.Usage()
		os.Exit(1)
	}

	logger := log.New(&cfg.LoggingConfig).ForClass("cmd", "oauth-completion")
	logger.Debug(RootContext, "server configuration", &cfg)

	channel, err := oauth.NewChannel(RootContext, oauth.Services{Logger: logger}, &cfg.OAuthConfig)
	if err != nil {
		logger.Fatal(RootContext, "failed to create completion channel", log.MapFields{
			"call_type": "ChannelCreationFailure",
			"err":       err.Error(),
		})
		os.Exit(1)
	}

	handler := oauth.NewCompletionHandler(&oauth.CompletionHandlerServices{
		Logger:  logger,
		Channel: channel,
	}, &oauth.CompletionHandlerProps{
		AllowedOrigins: cfg.BindConfig.AllowedOrigins,
		Limit:          cfg.BindConfig.BodyLimit,
	})

	router := http.NewServeMux()
	router.Handle(cfg.BindConfig.CompletionPath, handler)

	s := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.BindConfig.HttpInterface, cfg.BindConfig.HttpPort),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.BindConfig.HttpReadTimeoutMs) * time.Millisecond,
		WriteTimeout:   time.Duration(cfg.BindConfig.HttpWriteTimeoutMs) * time.Millisecond,
		MaxHeaderBytes: int(cfg.BindConfig.HttpMaxHeaderBytes),
	}

	if err := s.ListenAndServe(); err != nil {
		logger.Fatal(RootContext, "http server failed to listen", log.MapFields{
			"call_type": "HttpListenFailure",
			"err":       err.Error(),
		})
	}
}
