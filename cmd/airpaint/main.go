package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/airpaint/internal/app"
	"github.com/ayusman/airpaint/internal/config"
	"github.com/ayusman/airpaint/internal/discovery"
	"github.com/ayusman/airpaint/internal/display"
	"github.com/ayusman/airpaint/internal/gesture"
	"github.com/ayusman/airpaint/internal/server"
	"github.com/ayusman/airpaint/internal/store"
	"github.com/ayusman/airpaint/internal/tray"
)

func main() {
	var sets settingFlags
	dbPath := flag.String("db", "", "settings database (default ~/.airpaint/airpaint.db)")
	addr := flag.String("addr", "", "HTTP viewer address (overrides http_addr)")
	camera := flag.Int("camera", 0, "camera device (overrides camera_device)")
	window := flag.Bool("window", true, "show the preview window (overrides window)")
	trayMode := flag.Bool("tray", false, "run from the system tray without a preview window")
	advertise := flag.Bool("advertise", false, "announce the viewer on the local network over mDNS")
	name := flag.String("name", "", "mDNS instance name (default host name)")
	find := flag.Bool("find", false, "list viewers on the local network and exit")
	flag.Var(&sets, "set", "persist a setting as key=json-value (repeatable)")
	flag.Parse()

	fmt.Println("AirPaint - Gesture Drawing")

	if *find {
		findViewers()
		return
	}

	if *dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		dataDir := filepath.Join(homeDir, ".airpaint")
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		*dbPath = filepath.Join(dataDir, "airpaint.db")
	}

	st, err := store.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	for _, kv := range sets {
		if err := persistSetting(st.Settings(), kv); err != nil {
			log.Fatalf("Failed to save setting: %v", err)
		}
	}

	cfg, err := config.LoadFrom(st.Settings())
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.HTTPAddr = *addr
		case "camera":
			cfg.CameraDevice = *camera
		case "window":
			cfg.Window = *window
		}
	})
	if *trayMode {
		// The tray owns the main thread, which the preview window needs too.
		cfg.Window = false
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	frames := server.NewFrameHub()
	state := server.NewStateHub()
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}
	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Frames:    frames,
		State:     state,
	})

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", cfg.HTTPAddr, err)
	}
	viewerURL := "http://" + ln.Addr().String() + "/"
	fmt.Printf("Viewer at %s\n", viewerURL)
	go func() {
		if err := srv.Serve(ctx, ln); err != nil {
			log.Printf("Server failed: %v", err)
		}
	}()

	if *advertise {
		tcpAddr := ln.Addr().(*net.TCPAddr)
		adv, err := discovery.Advertise(*name, tcpAddr, []string{"path=/"})
		switch {
		case errors.Is(err, discovery.ErrLoopback):
			log.Printf("Not advertising: %v; set -addr to a LAN or 0.0.0.0 address", err)
		case err != nil:
			log.Printf("Failed to advertise viewer: %v", err)
		default:
			defer adv.Shutdown()
			log.Printf("Advertising viewer as %s on %s", discovery.ServiceType, tcpAddr)
		}
	}

	sinks := []display.Sink{frames}
	if cfg.Window {
		sinks = append(sinks, display.NewWindow("AirPaint"))
	}

	appCfg := app.Config{
		Settings:  cfg,
		Sink:      display.Multi(sinks...),
		Publisher: state,
		Store:     st,
	}

	if !*trayMode {
		a, err := app.New(appCfg)
		if err != nil {
			log.Fatalf("Failed to create app: %v", err)
		}
		if err := a.Run(ctx); err != nil {
			log.Fatalf("Painting stopped: %v", err)
		}
		return
	}

	runTray(ctx, stop, appCfg, viewerURL)
}

// runTray runs the painting loop in the background while the tray menu owns
// the main goroutine.
func runTray(ctx context.Context, stop context.CancelFunc, appCfg app.Config, viewerURL string) {
	t := tray.New()
	appCfg.OnGesture = func(g gesture.Gesture) {
		t.SetLastGesture(g.String())
	}

	a, err := app.New(appCfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	t.OnToggle(a.SetEnabled)
	t.OnViewer(func() {
		if err := openBrowser(viewerURL); err != nil {
			log.Printf("Failed to open viewer: %v", err)
		}
	})
	t.OnQuit(stop)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
		t.Quit()
	}()

	t.Run()
	stop()
	if err := <-errCh; err != nil {
		log.Fatalf("Painting stopped: %v", err)
	}
}

func findViewers() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	viewers, err := discovery.Browse(ctx, 3*time.Second)
	if err != nil {
		log.Fatalf("Failed to browse for viewers: %v", err)
	}
	if len(viewers) == 0 {
		fmt.Println("No viewers found")
		return
	}
	for _, v := range viewers {
		fmt.Printf("%s\t%s\n", v.Name, v.URL)
	}
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for a custom viewer directory in "web", "../web",
// "../../web" and ~/.airpaint/web. Returns "" when none exists.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".airpaint", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
