package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moyoez/diary-upload-go/api"
	"github.com/moyoez/diary-upload-go/diary"
	"github.com/moyoez/diary-upload-go/notify"
	"github.com/moyoez/diary-upload-go/presenter"
	"github.com/moyoez/diary-upload-go/tool"
	"github.com/moyoez/diary-upload-go/transfer"
	"github.com/moyoez/diary-upload-go/weather"
)

func main() {
	cfg := tool.SetFlags()
	tool.SetLogMode(cfg.Log)

	// initialize logger
	tool.InitLogger()

	if err := tool.LoadEnvFile(cfg.UseEnvPath); err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	appCfg, err := tool.LoadConfig(cfg.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	if err := tool.ApplyEnvOverrides(&appCfg); err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	if err := tool.ApplyFlagOverrides(&appCfg, cfg); err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	if err := tool.ValidateConfig(&appCfg); err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	tool.InitHTTPClients(time.Duration(appCfg.Server.Timeout) * time.Second)
	notify.SetUseNotify(cfg.UseNotify)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	weatherClient := weather.NewClient(appCfg.Weather, tool.GetHttpClient())
	location := weather.LocationFromConfig(appCfg.Location)

	tool.DefaultLogger.Infof("%s", diary.DateLine(time.Now()))
	tool.DefaultLogger.Infof("%s", weatherClient.Describe(ctx, location))

	endpoints := transfer.EndpointsFromConfig(appCfg.Server)
	pollOpts := transfer.PollOptionsFromConfig(appCfg.Poll)

	if appCfg.Control.Enabled {
		apiServer := api.NewServer(api.Options{
			Port:         appCfg.Control.Port,
			AllowOrigins: appCfg.Control.AllowOrigins,
			Endpoints:    endpoints,
			Poll:         pollOpts,
			HTTPClient:   tool.GetHttpClient(),
			Weather:      weatherClient,
			Location:     location,
		})
		go func() {
			if err := apiServer.Start(ctx); err != nil {
				tool.DefaultLogger.Fatalf("API server startup failed: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := apiServer.Shutdown(shutdownCtx); err != nil {
				tool.DefaultLogger.Errorf("API server shutdown failed: %v", err)
			}
		}()
	}

	if cfg.UseUpload != "" {
		if err := uploadOnce(ctx, endpoints, pollOpts, cfg.UseUpload); err != nil {
			tool.DefaultLogger.Errorf("%v", err)
			if !appCfg.Control.Enabled {
				stop()
				os.Exit(1)
			}
		}
	}

	if appCfg.Control.Enabled {
		<-ctx.Done()
		tool.DefaultLogger.Info("Shutting down")
	}
}

// uploadOnce validates path, uploads it and blocks until the session ends.
func uploadOnce(ctx context.Context, endpoints transfer.Endpoints, pollOpts transfer.PollOptions, path string) error {
	check, err := tool.CheckUploadFile(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sessionId := tool.GenerateShortSessionID()
	var view transfer.Presenter = presenter.NewLog(tool.DefaultLogger, check.FileName)
	if notify.UseNotify {
		view = presenter.Multi{view, presenter.NewNotify(sessionId, check.FileName)}
	}
	session := transfer.NewSession(endpoints, view,
		transfer.WithSessionId(sessionId),
		transfer.WithPollOptions(pollOpts),
		transfer.WithHTTPClient(tool.GetHttpClient()),
	)
	err = session.Submit(ctx, transfer.UploadFile{
		FileName:    check.FileName,
		ContentType: check.FileType,
		Size:        check.Size,
		Data:        f,
	})
	notify.SendUploadEndNotification(session.Snapshot())
	if err != nil {
		return err
	}
	tool.DefaultLogger.Infof("Uploaded %s as %s", check.FileName, session.UploadId())
	return nil
}
