package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/runlevel/internal/cliutil"
	"github.com/maxkimambo/runlevel/internal/logger"
	"github.com/maxkimambo/runlevel/lifecycle"
)

var (
	demoParallel   bool
	demoStandalone bool
	demoFailInit   bool
	demoFailStop   bool
	demoTaskTime   time.Duration
	demoRunFor     time.Duration

	demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Run a demonstration daemon through the full lifecycle",
		Long: `demo boots a simulated service: init acquires resources in priority
order, start brings up a listener, and stop/finish release everything in
reverse on Ctrl-C (or after --run-for elapses). Use the flags to inject
failures and switch phases to parallel execution.`,
		RunE: runDemo,
	}
)

func init() {
	demoCmd.Flags().BoolVar(&demoParallel, "parallel", false, "Run init and stop phases in parallel")
	demoCmd.Flags().BoolVar(&demoStandalone, "standalone", false, "Run a one-shot standalone task instead of serving")
	demoCmd.Flags().BoolVar(&demoFailInit, "fail-init", false, "Make an init task fail")
	demoCmd.Flags().BoolVar(&demoFailStop, "fail-stop", false, "Make a stop task fail")
	demoCmd.Flags().DurationVar(&demoTaskTime, "task-time", 150*time.Millisecond, "Simulated duration of each task")
	demoCmd.Flags().DurationVar(&demoRunFor, "run-for", 0, "Shut down automatically after this duration (0 waits for a signal)")
}

// simulate returns a task that sleeps for the configured duration and then
// logs its step.
func simulate(step string) lifecycle.Func {
	return func(ctx context.Context) error {
		select {
		case <-time.After(demoTaskTime):
		case <-ctx.Done():
			return ctx.Err()
		}
		logger.L().WithField("step", step).Debug("task complete")
		return nil
	}
}

func failing(step string) lifecycle.Func {
	return func(ctx context.Context) error {
		return errors.New(step + " failed (injected)")
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := lifecycle.DefaultConfig()
	cfg.Logger = logger.L()
	cfg.LogTimes = true
	cfg.ExitProcess = false
	cfg.InitInParallel = demoParallel
	cfg.StopInParallel = demoParallel

	c := lifecycle.New(cfg)

	var regErrs []error
	reg := func(err error) { regErrs = append(regErrs, err) }

	reg(c.Init(simulate("load config"), 1))
	reg(c.Init(simulate("open database"), 2))
	reg(c.Init(simulate("warm cache")))
	if demoFailInit {
		reg(c.Init(failing("open database replica"), 2))
	}

	reg(c.Start(simulate("bind listener"), 1))
	reg(c.Start(simulate("announce to peers")))

	if demoFailStop {
		reg(c.Stop(failing("drain connections"), 1))
	} else {
		reg(c.Stop(simulate("drain connections"), 1))
	}
	reg(c.Stop(simulate("deregister from peers"), 2))

	reg(c.Finish(simulate("flush cache"), 1))
	reg(c.Finish(simulate("close database"), 2))

	if demoStandalone {
		reg(c.Standalone(func(ctx context.Context) error {
			fmt.Println(cliutil.Info("Standalone", "running the one-shot workload"))
			return simulate("one-shot workload")(ctx)
		}))
	}
	if err := errors.Join(regErrs...); err != nil {
		return err
	}

	c.On(lifecycle.EventReady, func() {
		fmt.Println(cliutil.Success("Ready", "all init and start tasks complete"))
	})
	c.On(lifecycle.EventShutdown, func() {
		fmt.Println(cliutil.Warning("Shutting down", "draining and releasing resources"))
	})
	c.On(lifecycle.EventEnd, func() {
		fmt.Println(cliutil.Success("End", "stop and finish phases complete"))
	})
	c.OnError(func(err error) {
		fmt.Println(cliutil.Error("Error", err.Error()))
	})

	if err := c.Startup(); err != nil {
		return err
	}
	if demoRunFor > 0 && !demoStandalone {
		time.AfterFunc(demoRunFor, func() { c.Shutdown(0) })
	}

	if code := c.Wait(); code != 0 {
		return fmt.Errorf("lifecycle ended with exit code %d", code)
	}
	return nil
}
