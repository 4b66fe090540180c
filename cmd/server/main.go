package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/orchestrator"
	"github.com/danielpatrickdp/motion-scan/internal/rpc"
	"github.com/danielpatrickdp/motion-scan/internal/store"
)

func main() {
	settings := config.LoadSettings()

	addr := flag.String("addr", settings.GRPCAddr, "gRPC listen address")
	configPath := flag.String("config", settings.ConfigPath, "scoring document; empty uses built-in defaults")
	dbPath := flag.String("db", settings.DBPath, "SQLite result store; empty disables persistence")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}
	worker, err := orchestrator.NewWorker(cfg)
	if err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}
	log.Printf("[CONFIG] %d test types, seed %d", len(worker.TestTypes()), cfg.RandomSeed)

	var st *store.Store
	if *dbPath != "" {
		st, err = store.Open(context.Background(), *dbPath)
		if err != nil {
			log.Fatalf("[STORE] %v", err)
		}
		defer st.Close()
	}

	srv := grpc.NewServer(
		grpc.MaxRecvMsgSize(50*1024*1024),
		grpc.MaxSendMsgSize(50*1024*1024),
	)
	hs := rpc.Register(srv, rpc.NewHandler(worker, st))

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("[RPC] listen %s: %v", *addr, err)
	}
	go func() {
		log.Printf("[RPC] %s listening on %s", rpc.ServiceName, lis.Addr())
		if err := srv.Serve(lis); err != nil {
			log.Fatalf("[RPC] serve: %v", err)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done
	log.Println("[RPC] shutting down")
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
		log.Println("[RPC] stopped")
	case <-time.After(10 * time.Second):
		log.Println("[RPC] forced shutdown")
		srv.Stop()
	}
}
