// Package pipeline wires the triple source, member assembler, and
// fragmentation engine into the two-stage producer/consumer pipeline
// described by the system this was built against: the producer parses
// triples and assembles members (blocking I/O, single-threaded); a
// separate consumer drains completed members into the fragmentation
// engine. The two communicate over a single bounded channel so a stalled
// consumer back-pressures the parser instead of letting an unbounded
// queue grow - a deliberate tightening of the source system, which used
// an unbounded channel.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/3leaps/treedump/pkg/fragmentation"
	"github.com/3leaps/treedump/pkg/member"
	"github.com/3leaps/treedump/pkg/rdfio"
	"github.com/3leaps/treedump/pkg/report"
)

// Config holds everything the driver needs beyond the source/assembler/
// engine themselves.
type Config struct {
	// ChannelBuffer bounds the member channel between the producer and
	// consumer halves. The design notes suggest cache_capacity *
	// n_fragments as a starting point.
	ChannelBuffer int
	Logger        *zap.Logger
}

// Summary reports wall-clock duration and counts for a completed run.
type Summary struct {
	MembersEmitted int
	Duration       time.Duration
}

// Run drives src through asm, pushing every completed member to engine,
// and returns the final report once the source is exhausted and the
// engine has finalized. A fatal error from either half aborts the run;
// Pending() triples left in the assembler at EOF are discarded silently,
// matching the no-partial-members rule.
func Run(ctx context.Context, src rdfio.Source, asm *member.Assembler, engine fragmentation.Engine, cfg Config) (report.Report, Summary, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	buffer := cfg.ChannelBuffer
	if buffer <= 0 {
		buffer = 1
	}

	start := time.Now()
	pipeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	memberCh := make(chan member.Member, buffer)
	errCh := make(chan error, 2)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(memberCh)
		if err := produce(pipeCtx, src, asm, memberCh); err != nil {
			trySend(errCh, err)
			cancel()
		}
	}()

	var nEmitted int
	wg.Add(1)
	go func() {
		defer wg.Done()
		n, err := consume(memberCh, engine)
		nEmitted = n
		if err != nil {
			trySend(errCh, err)
			cancel()
		}
	}()

	wg.Wait()

	select {
	case err := <-errCh:
		return nil, Summary{}, err
	default:
	}
	if err := pipeCtx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return nil, Summary{}, err
	}

	rep, err := engine.Finalize()
	if err != nil {
		return nil, Summary{}, fmt.Errorf("pipeline: finalize: %w", err)
	}

	duration := time.Since(start)
	logger.Info("fragmentation run complete",
		zap.Int("members_emitted", nEmitted),
		zap.Duration("duration", duration),
	)

	return rep, Summary{MembersEmitted: nEmitted, Duration: duration}, nil
}

func produce(ctx context.Context, src rdfio.Source, asm *member.Assembler, out chan<- member.Member) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		t, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("pipeline: reading triple source: %w", err)
		}

		m, emitted, err := asm.Observe(t)
		if err != nil {
			return fmt.Errorf("pipeline: assembling member: %w", err)
		}
		if !emitted {
			continue
		}

		select {
		case out <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

// consume drains in until it closes, inserting every member into engine.
// It keeps draining even after ctx is cancelled by a sibling failure, so a
// producer that errors out doesn't leave the channel's sender blocked
// forever on a send nobody will read; a failure of its own still returns
// immediately.
func consume(in <-chan member.Member, engine fragmentation.Engine) (int, error) {
	n := 0
	for m := range in {
		if err := engine.Insert(m); err != nil {
			return n, fmt.Errorf("pipeline: inserting member %q: %w", m.ID, err)
		}
		n++
	}
	return n, nil
}

func trySend(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}
