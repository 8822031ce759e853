/*
Copyright 2025 the Unikorn Authors.
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/unikorn-cloud/bookstore/test/api/fakeserver"
)

type options struct {
	listen            string
	persist           bool
	books             int
	authorsPerBook    int
	readHeaderTimeout time.Duration
	shutdownTimeout   time.Duration
	debug             bool
}

func (o *options) addFlags(f *pflag.FlagSet) {
	f.StringVar(&o.listen, "listen", ":8080", "Address to serve the bookstore on.")
	f.BoolVar(&o.persist, "persist", false, "Store writes so later reads observe them.")
	f.IntVar(&o.books, "books", fakeserver.DefaultBooks, "Number of seeded books.")
	f.IntVar(&o.authorsPerBook, "authors-per-book", fakeserver.DefaultAuthorsPerBook, "Number of seeded authors per book.")
	f.DurationVar(&o.readHeaderTimeout, "read-header-timeout", 5*time.Second, "Time allowed to read request headers.")
	f.DurationVar(&o.shutdownTimeout, "shutdown-timeout", 10*time.Second, "Time allowed for in-flight requests on shutdown.")
	f.BoolVar(&o.debug, "debug", false, "Enable debug logging.")
}

func newLogger(o *options) *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if o.debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logrus.NewEntry(logger).WithField("component", "bookstore-fake")
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, o *options, listener net.Listener, logger *logrus.Entry) error {
	handler := fakeserver.New(fakeserver.Options{
		Persist:        o.persist,
		Books:          o.books,
		AuthorsPerBook: o.authorsPerBook,
	})

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: o.readHeaderTimeout,
	}

	errs := make(chan error, 1)

	go func() {
		errs <- server.Serve(listener)
	}()

	logger.WithFields(logrus.Fields{
		"address": listener.Addr().String(),
		"persist": o.persist,
		"books":   handler.BookCount(),
		"authors": handler.AuthorCount(),
	}).Info("service starting")

	select {
	case err := <-errs:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	logger.Info("service stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), o.shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	return nil
}

func main() {
	var o options

	o.addFlags(pflag.CommandLine)

	pflag.Parse()

	logger := newLogger(&o)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", o.listen)
	if err != nil {
		logger.WithError(err).Error("unable to listen")
		os.Exit(1)
	}

	if err := run(ctx, &o, listener, logger); err != nil {
		logger.WithError(err).Error("service failed")
		os.Exit(1)
	}
}
