// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// testserver serves the sample site from testutil (a robots.txt declaring
// good, gzipped, malformed and missing sitemaps) so the CLI can be tried
// end to end without network access:
//
//	go run ./cmd/testserver -port 8080
//	sitemapper extract http://localhost:8080 --no-history
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentberlin/sitemapper/internal/log"
	"github.com/agentberlin/sitemapper/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	port := flag.Int("port", 8080, "Port to run the HTTP server on")
	host := flag.String("host", "127.0.0.1", "Host to bind the HTTP server to")
	flag.Parse()

	logger := log.NewLogger(log.NewStdoutPlugin(zapcore.InfoLevel))
	defer logger.Sync()

	addr := fmt.Sprintf("%s:%d", *host, *port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      testutil.NewUnstartedTestServer().Config.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("serving sample site", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}
