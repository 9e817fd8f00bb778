package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kilianp07/parkwatch/app"
	"github.com/kilianp07/parkwatch/core/alert"
	"github.com/kilianp07/parkwatch/infra/logger"
	"github.com/kilianp07/parkwatch/internal/tui"
)

var headless bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the parking status screen",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&headless, "headless", false, "log alerts instead of drawing the screen")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logPath := "parkwatch.log"
	if headless {
		logPath = ""
	}
	cfg, logFile, err := load(logPath)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, stop := signalContext()
	defer stop()

	if headless {
		svc, err := app.NewWatch(cfg, alert.LogNotifier{Log: logger.New("alert")})
		if err != nil {
			return err
		}
		defer closeService(svc)
		return svc.Run(ctx)
	}

	notifier := &tui.Notifier{}
	svc, err := app.NewWatch(cfg, notifier)
	if err != nil {
		return err
	}
	defer closeService(svc)

	sub := svc.Bus.Subscribe()
	defer svc.Bus.Unsubscribe(sub)
	// Alerts raised while building the service, such as a client that could
	// not be set up, predate the program and are queued on the model.
	model := tui.NewModel(svc.Monitor.Snapshot(), sub).Queue(svc.Alerts.Alerts()...)
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	notifier.Program = prog

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := svc.Run(ctx); err != nil {
			logger.New("watch").Errorf("service: %v", err)
		}
	}()
	_, err = prog.Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func closeService(c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}
