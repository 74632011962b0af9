package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	match "github.com/0x5487/iceberg-book"
	"github.com/0x5487/iceberg-book/protocol"
)

type config struct {
	logLevel slog.Level
	depth    uint
	audit    bool
}

func main() {
	cfg := config{}
	flag.TextVar(&cfg.logLevel, "log-level", slog.LevelInfo, "log level (debug, info, warn, error)")
	flag.UintVar(&cfg.depth, "depth", 0, "also print this many aggregated price levels per side after each order")
	flag.BoolVar(&cfg.audit, "audit", false, "write every book event as a JSON line to stderr")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel}))
	match.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout, os.Stderr, cfg, logger); err != nil {
		logger.Error("matching stopped", "error", err)
		os.Exit(1)
	}
}

// run feeds every line of in to one book and writes the book and its fills to out.
// It returns nil at end of input and an error only when the book itself failed.
func run(ctx context.Context, in io.Reader, out io.Writer, audit io.Writer, cfg config, logger *slog.Logger) error {
	var publisher match.PublishLog = match.NewDiscardPublishLog()
	if cfg.audit {
		publisher = match.NewWriterPublishLog(audit)
	}

	book := match.NewOrderBook(publisher)
	seq := match.NewSequencer(book)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := seq.Shutdown(shutdownCtx); err != nil {
			logger.Warn("sequencer shutdown", "error", err)
		}
	}()

	logger.Info("order book started", "book_id", book.ID(), "version", match.EngineVersion)

	decoder := protocol.NewDecoder(nil)
	encoder := protocol.NewEncoder(nil)
	w := bufio.NewWriter(out)
	defer w.Flush()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		lineNo++

		cmd, err := decoder.Decode(scanner.Bytes())
		if err != nil {
			logger.Warn("skipping line", "kind", "decode_error", "line", lineNo, "error", err)
			writeError(w, err)
			continue
		}

		order, err := match.OrderFromCommand(cmd)
		if err != nil {
			logger.Warn("skipping line", "kind", "decode_error", "line", lineNo, "error", err)
			writeError(w, err)
			continue
		}

		fills, err := seq.Submit(ctx, order)
		switch {
		case errors.Is(err, match.ErrInvariantViolation):
			return fmt.Errorf("line %d: %w", lineNo, err)
		case err != nil:
			logger.Warn("order rejected", "kind", "rejected", "line", lineNo, "order_id", order.ID, "error", err)
			writeError(w, err)
			continue
		}

		if err := writeResult(ctx, w, seq, encoder, fills, cfg); err != nil {
			return err
		}
	}

	return scanner.Err()
}

// writeError writes the block for a line that was not applied: one error record and a blank line.
func writeError(w *bufio.Writer, err error) {
	// Validation errors list one field per line.
	msg := strings.ReplaceAll(err.Error(), "\n", "; ")
	fmt.Fprintf(w, "error: %s\n\n", msg)
	w.Flush()
}

func writeResult(ctx context.Context, w *bufio.Writer, seq *match.Sequencer, encoder *protocol.Encoder, fills []match.FillEvent, cfg config) error {
	snap, err := seq.Snapshot(ctx)
	if err != nil {
		return err
	}

	data, err := encoder.EncodeBook(match.NewBookView(snap))
	if err != nil {
		return err
	}
	w.Write(data)
	w.WriteByte('\n')

	for _, fill := range fills {
		data, err := encoder.EncodeFill(match.NewFillView(fill))
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}

	if cfg.depth > 0 {
		depth, err := seq.Depth(ctx, uint32(cfg.depth)) //nolint:gosec // flag value
		if err != nil {
			return err
		}
		data, err := encoder.Encode(depth)
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}

	w.WriteByte('\n')
	return w.Flush()
}
