package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"realmtick.io/internal/platform/config"
)

func tickCmd(args []string, env config.Server) {
	fs := flag.NewFlagSet("tick", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	token := fs.String("token", env.AdminToken, "admin token (or set REALMTICK_ADMIN_TOKEN)")
	_ = fs.Parse(args)

	req, _ := http.NewRequest(http.MethodPost, endpoint(*baseURL, "/admin/tick"), nil)
	if t := strings.TrimSpace(*token); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}
	// A tick can take a while on a large world.
	do(&http.Client{Timeout: 10 * time.Minute}, req)
}

func healthCmd(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	req, _ := http.NewRequest(http.MethodGet, endpoint(*baseURL, "/healthz"), nil)
	do(&http.Client{Timeout: 5 * time.Second}, req)
}

func routeCmd(args []string) {
	fs := flag.NewFlagSet("route", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	from := fs.String("from", "", "origin town id")
	to := fs.String("to", "", "destination town id")
	_ = fs.Parse(args)

	if *from == "" || *to == "" {
		fmt.Fprintln(os.Stderr, "missing -from or -to")
		os.Exit(2)
	}
	q := url.Values{"from": {*from}, "to": {*to}}
	req, _ := http.NewRequest(http.MethodGet, endpoint(*baseURL, "/v1/routes")+"?"+q.Encode(), nil)
	do(&http.Client{Timeout: 5 * time.Second}, req)
}

func endpoint(base, path string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + path
}

func do(cl *http.Client, req *http.Request) {
	resp, err := cl.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(strings.TrimSpace(string(b)))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}
