package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	persistlog "realmtick.io/internal/persistence/log"
	"realmtick.io/internal/platform/config"
)

func main() {
	var env config.Server
	if err := config.ParseEnv(&env); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "tick":
		tickCmd(os.Args[2:], env)
	case "health":
		healthCmd(os.Args[2:])
	case "route":
		routeCmd(os.Args[2:])
	case "reports":
		reportsCmd(os.Args[2:], env)
	case "runs":
		runsCmd(os.Args[2:], env)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin <tick|health|route|reports|runs> [flags]")
}

// reportsCmd prints archived tick reports, one summary line per run.
func reportsCmd(args []string, env config.Server) {
	fs := flag.NewFlagSet("reports", flag.ExitOnError)
	dir := fs.String("dir", env.ReportDir, "tick report archive directory")
	failedOnly := fs.Bool("failed", false, "only show runs with failed steps")
	verbose := fs.Bool("v", false, "list every step")
	_ = fs.Parse(args)

	runs, err := persistlog.ReadReports(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read reports:", err)
		os.Exit(1)
	}
	for _, run := range runs {
		failed := run.Failed()
		if *failedOnly && failed == 0 {
			continue
		}
		fmt.Printf("%s  %s  steps=%d failed=%d\n",
			run.StartedAt.Format("2006-01-02T15:04:05Z"), run.ID, len(run.Results), failed)
		if !*verbose && failed == 0 {
			continue
		}
		for _, s := range run.Results {
			if !*verbose && s.Succeeded {
				continue
			}
			status := "ok"
			if !s.Succeeded {
				status = "FAIL " + strings.TrimSpace(s.Error)
			}
			fmt.Printf("    %-26s %8.2fms  %s\n", s.Name, s.DurationMS, status)
		}
	}
}
