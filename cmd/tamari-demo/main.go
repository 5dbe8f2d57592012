package main

import (
	"context"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mempool "github.com/unkn0wn-root/tamari"
	"github.com/unkn0wn-root/tamari/jsonconf"
	"github.com/unkn0wn-root/tamari/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	var (
		httpAddr = flag.String("http", ":8085", "listen address for /metrics and /stats")
		cfgPath  = flag.String("config", "", "optional JSON config file ($include supported)")
		logLevel = flag.String("loglevel", "info", "debug|info|log|warn|error")

		// workload
		workers = flag.Int("workers", 8, "workload goroutines")
		maxSize = flag.Int("maxsize", 4096, "largest block the workload requests")
		hold    = flag.Duration("hold", 2*time.Millisecond, "how long a block stays live")
		report  = flag.Duration("report", 5*time.Second, "stats log interval")

		// allocator
		preset = flag.String("preset", "default", "default|small|throughput|lowmem|secure|large")
	)
	flag.Parse()

	lg := logger.New("tamari-demo", logger.NewStdoutEndpoint())
	if lvl, err := logger.ParseLevel(strings.ToUpper(*logLevel)); err == nil {
		lg.SetLevel(lvl)
	}
	lg.SetFlushInterval(200 * time.Millisecond)
	defer lg.Close()

	if *cfgPath != "" {
		root, err := jsonconf.NewParser().ParseFile(*cfgPath)
		if err != nil {
			lg.Errorf("config %s: %v", *cfgPath, err)
			lg.Close()
			os.Exit(1)
		}
		*httpAddr = root.Child("http").StringOr(*httpAddr)
		*preset = root.Child("allocator").Child("preset").StringOr(*preset)
		wl := root.Child("workload")
		*workers = int(wl.Child("workers").NumberOr(float64(*workers)))
		*maxSize = int(wl.Child("maxsize").NumberOr(float64(*maxSize)))
		if d, err := time.ParseDuration(wl.Child("hold").StringOr(hold.String())); err == nil {
			*hold = d
		}
		lg.Infof("config loaded from %s", *cfgPath)
	}
	if *maxSize < 8 {
		*maxSize = 8
	}

	mgr := mempool.GlobalManager
	if cfg, ok := presetConfig(*preset); ok {
		if err := mgr.RegisterConfig("demo", cfg); err != nil {
			lg.Warnf("register config: %v", err)
		}
	} else {
		lg.Warnf("unknown preset %q; using default", *preset)
	}
	alloc := mgr.Get("demo")

	reg := prometheus.NewRegistry()
	reg.MustRegister(mempool.NewCollector("demo", alloc))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		snaps := make(map[string]mempool.Snapshot)
		for _, name := range mgr.Names() {
			snaps[name] = mempool.TakeSnapshot(mgr.Get(name), name)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snaps); err != nil {
			lg.Errorf("stats encode: %v", err)
		}
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(alloc.Stats().String()))
		w.Write([]byte(alloc.DetailedStatus()))
	})

	server := &http.Server{Addr: *httpAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Errorf("http: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	var ops uint64
	var wg sync.WaitGroup

	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				size := 8 + rng.Intn(*maxSize-7)
				ptr := alloc.Allocate(size)
				if ptr == nil {
					continue
				}
				*(*byte)(ptr) = byte(size)
				if *hold > 0 {
					time.Sleep(*hold)
				}
				alloc.Deallocate(ptr)
				atomic.AddUint64(&ops, 1)
			}
		}(int64(w) + time.Now().UnixNano())
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(*report)
		defer ticker.Stop()
		var last uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := atomic.LoadUint64(&ops)
				s := alloc.Stats()
				rate := float64(now-last) / report.Seconds()
				lg.Infof("%d ops (%.0f/s) | active=%d pools=%d fallbacks=%d",
					now, rate, s.ActiveAllocations, s.PoolsInUse, s.FallbackAllocations)
				last = now
			}
		}
	}()

	lg.Infof("tamari demo up at %s | workers=%d maxsize=%d hold=%s preset=%s",
		*httpAddr, *workers, *maxSize, *hold, *preset)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	lg.Infof("shutting down...")

	cancel()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Errorf("http shutdown: %v", err)
	}

	if err := mgr.CloseAll(); err != nil {
		lg.Errorf("close allocators: %v", err)
	}
	lg.Infof("bye.")
}

func presetConfig(name string) (mempool.Config, bool) {
	switch strings.ToLower(name) {
	case "default":
		return mempool.DefaultConfig(), true
	case "small":
		return mempool.SmallObjectConfig(), true
	case "throughput":
		return mempool.ThroughputConfig(), true
	case "lowmem":
		return mempool.LowMemoryConfig(), true
	case "secure":
		return mempool.SecureConfig(), true
	case "large":
		return mempool.LargeBlockConfig(), true
	default:
		return mempool.Config{}, false
	}
}

