// Package scan orchestrates one duplicate-finding run: walk the given
// roots, filter entries, insert each into the match tree, and register
// confirmed duplicates into chains via the registrar. The core loop
// runs on the calling goroutine; the only other goroutines are a
// progress ticker and signal handling, mirroring the teacher's
// Engine.hashDir concurrency shape scaled down to the spec's
// single-threaded-cooperative matching model.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/jodyjdupes/jdupes-go/internal/config"
	"github.com/jodyjdupes/jdupes-go/internal/coreerr"
	"github.com/jodyjdupes/jdupes-go/internal/filter"
	"github.com/jodyjdupes/jdupes-go/internal/hashcache"
	"github.com/jodyjdupes/jdupes-go/internal/hashing"
	"github.com/jodyjdupes/jdupes-go/internal/logger"
	"github.com/jodyjdupes/jdupes-go/internal/matchtree"
	"github.com/jodyjdupes/jdupes-go/internal/progress"
	"github.com/jodyjdupes/jdupes-go/internal/record"
	"github.com/jodyjdupes/jdupes-go/internal/registrar"
	"github.com/jodyjdupes/jdupes-go/internal/travguard"
	"github.com/jodyjdupes/jdupes-go/internal/walk"
)

// Result is everything a scan produced: every discovered record plus
// the set of duplicate chain heads (records with HasDupes set).
type Result struct {
	Store       *record.Store
	ChainHeads  []*record.Record
	FilesWalked int
	DupePairs   int
	// HashFailures counts candidate pairs whose hashes matched but whose
	// bytes did not, per the byte confirmer.
	HashFailures int
}

// ErrInterrupted is returned when the scan is stopped by an interrupt
// without soft-abort enabled; no action should run on the partial
// results in that case.
var ErrInterrupted = errors.New("scan interrupted")

// Scan runs one complete duplicate-finding pass over cfg.Roots.
//
// errOnFirstDupe, when non-nil, is invoked the instant a pair is
// confirmed (before registration), so cmd/errorondupe can print both
// paths and exit 255 without waiting for the whole tree to finish,
// per the original's -E semantics.
func Scan(ctx context.Context, cfg *config.Config, sink progress.Sink, errOnFirstDupe func(a, b *record.Record) error) (*Result, error) {
	if sink == nil {
		sink = progress.NullSink{}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var softAbort, interrupted atomic.Bool
	watchSoftAbortToggle(ctx, &softAbort)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			interrupted.Store(true)
			if softAbort.Load() {
				logger.Warn("interrupted, finishing in-flight comparison then acting on duplicates confirmed so far")
			} else {
				logger.Warn("interrupted, finishing in-flight comparison then stopping")
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	store := record.NewStore()

	var guard travguard.Guard
	if cfg.NoTravCheck {
		guard = travguard.NewNop()
	} else {
		guard = travguard.New()
	}

	gate := &filter.Gate{NoHidden: cfg.NoHidden, ExtFilters: cfg.ExtFilters, ZeroMatch: cfg.ZeroMatch, Exclude: cfg.Exclude}
	walker := walk.New(walk.Options{
		Recursion:      cfg.Recursion,
		RecurseFrom:    cfg.RecurseFrom,
		OneFileSystem:  cfg.OneFileSystem,
		FollowSymlinks: cfg.FollowSymlinks,
		Gate:           gate,
		Guard:          guard,
	})

	var cache *hashcache.Cache
	if cfg.HashDBPath != "" {
		loaded, err := hashcache.Load(cfg.HashDBPath)
		switch {
		case err != nil:
			logger.Warn("could not load hash cache, starting empty", "path", cfg.HashDBPath, "error", err)
			cache = hashcache.New(cfg.Algorithm)
		case loaded.Algorithm != cfg.Algorithm:
			// Digests from one algorithm must never be served under
			// another; a mismatched cache is discarded wholesale.
			logger.Warn("hash cache was built with a different algorithm, starting empty",
				"path", cfg.HashDBPath, "cache_algorithm", loaded.Algorithm.String(), "algorithm", cfg.Algorithm.String())
			cache = hashcache.New(cfg.Algorithm)
		default:
			cache = loaded
		}
	}

	engine := hashing.NewEngine(cfg.Algorithm)
	if cfg.ChunkSize > 0 {
		engine.ChunkSize = cfg.ChunkSize
	}

	tree := matchtree.New(matchtree.Config{
		ConsiderHardlinks: cfg.ConsiderHardlinks,
		OneFileSystem:     cfg.OneFileSystem,
		Isolate:           cfg.Isolate,
		Permissions:       cfg.Permissions,
		Quick:             cfg.Quick,
		PartialOnly:       cfg.PartialOnly,
		ChunkSize:         engine.ChunkSize,
	}, engine, cache)

	reg := registrar.New(registrar.NewComparator(registrar.Options{
		Order:      cfg.Order,
		Reverse:    cfg.Reverse,
		ParamOrder: cfg.ParamOrder,
	}))

	var filesWalked, dupePairs int64

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	tickerDone := make(chan struct{})
	go func() {
		defer close(tickerDone)
		for {
			select {
			case <-ticker.C:
				sink.Update("scanning", int(atomic.LoadInt64(&filesWalked)), 0, int(atomic.LoadInt64(&dupePairs)))
			case <-ctx.Done():
				return
			}
		}
	}()
	defer func() {
		cancel()
		<-tickerDone
		sink.Finish()
	}()

	emit, records := walk.NewRecordEmit(store)
	var walkErr error
	// Walked in a single call across every root so UserOrder (used by
	// --isolate, --param-order, and --recurse-split) reflects each root's
	// true position in cfg.Roots, and so the symlink-cycle guard persists
	// across roots instead of resetting at each one.
	if err := walker.Walk(cfg.Roots, emit); err != nil {
		walkErr = fmt.Errorf("walking roots: %w", err)
	}
	if walkErr != nil && len(*records) == 0 {
		return nil, coreerr.New(coreerr.Fatal, "", walkErr)
	}

	for _, rec := range *records {
		if ctx.Err() != nil {
			break
		}
		atomic.AddInt64(&filesWalked, 1)

		match, err := tree.Insert(ctx, rec)
		if err != nil {
			var ce *coreerr.Error
			if errors.As(err, &ce) {
				logger.Warn("skipping file after comparison error", "path", rec.Path, "kind", ce.Kind.String(), "error", err)
			} else {
				logger.Warn("skipping file after comparison error", "path", rec.Path, "error", err)
			}
			continue
		}
		if match == nil {
			continue
		}

		atomic.AddInt64(&dupePairs, 1)
		if errOnFirstDupe != nil {
			if err := errOnFirstDupe(match, rec); err != nil {
				return nil, err
			}
		}
		reg.Register(match, rec)
	}

	if interrupted.Load() && !softAbort.Load() {
		return nil, ErrInterrupted
	}

	// The cache is written once, here, on clean (or soft-aborted) exit
	// only; a hard abort above never reaches this point.
	if cache != nil && cache.Dirty() {
		if err := cache.Save(cfg.HashDBPath, time.Now().Unix()); err != nil {
			logger.Warn("could not save hash cache", "path", cfg.HashDBPath, "error", err)
		}
	}

	var heads []*record.Record
	for _, rec := range *records {
		if rec.HasDupes {
			heads = append(heads, rec)
		}
	}

	result := &Result{
		Store:        store,
		ChainHeads:   heads,
		FilesWalked:  int(filesWalked),
		DupePairs:    int(dupePairs),
		HashFailures: tree.HashFailures(),
	}
	if walkErr != nil {
		return result, walkErr
	}
	return result, nil
}
