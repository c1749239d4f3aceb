// ===========================================================================
//
//                            PUBLIC DOMAIN NOTICE
//            National Center for Biotechnology Information (NCBI)
//
//  This software/database is a "United States Government Work" under the
//  terms of the United States Copyright Act. It was written as part of
//  the author's official duties as a United States Government employee and
//  thus cannot be copyrighted. This software/database is freely available
//  to the public for use. The National Library of Medicine and the U.S.
//  Government do not place any restriction on its use or reproduction.
//  We would, however, appreciate having the NCBI and the author cited in
//  any work or product based on this material.
//
//  Although all reasonable efforts have been taken to ensure the accuracy
//  and reliability of the software and data, the NLM and the U.S.
//  Government do not and cannot warrant the performance or results that
//  may be obtained by using this software or data. The NLM and the U.S.
//  Government disclaim all warranties, express or implied, including
//  warranties of performance, merchantability or fitness for any particular
//  purpose.
//
// ===========================================================================
//
// File Name:  stats.go
//
// ==========================================================================

package isp

import (
	"fmt"
	"github.com/gedex/inflector"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"io"
	"math"
	"sync"
)

// statRow holds per-unit samples, in milliseconds, for one stage
type statRow struct {
	scale int
	user  []float64
	sys   []float64
	real  []float64
}

func (r *statRow) add(ut, st, rt uint64) {

	r.user = append(r.user, float64(ut))
	r.sys = append(r.sys, float64(st))
	r.real = append(r.real, float64(rt))
}

// StatsCollector accumulates the timing results of every stage upstream of
// fid, plus a total row for units that succeeded everywhere
type StatsCollector struct {
	mu     sync.Mutex
	fid    int
	rows   []*statRow
	failed int
}

// NewStatsCollector sizes the collector from the init stack. Unit counts
// of each stage are divided by the product of the split factors of the
// stages after it, so that a stage's count reflects the units it saw.
func NewStatsCollector(in *Init, fid int) (*StatsCollector, error) {

	if in == nil {
		return nil, fmt.Errorf("stats collector: %w", ErrNoInit)
	}

	s := &StatsCollector{fid: fid, rows: make([]*statRow, fid+1)}

	total := 1
	for id := 0; id <= fid; id++ {
		sf, err := in.SplitFactor(id)
		if err != nil {
			return nil, err
		}
		total *= sf
	}

	scale := total
	for id := 0; id <= fid; id++ {
		sf, _ := in.SplitFactor(id)
		scale /= sf
		s.rows[id] = &statRow{scale: scale}
	}

	return s, nil
}

// Add records the results of one unit. A failed stage contributes no
// sample, and a unit with any failed stage is left out of the total.
func (s *StatsCollector) Add(u *Unit) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	var tu, ts, tr uint64
	failed := false

	for id := 0; id < s.fid; id++ {
		r, err := u.Result(id)
		if err != nil {
			return err
		}
		if r.Code != Success {
			failed = true
			continue
		}
		tu += r.UTime
		ts += r.STime
		tr += r.RTime
		s.rows[id].add(r.UTime, r.STime, r.RTime)
	}

	if failed {
		s.failed++
		return nil
	}
	s.rows[s.fid].add(tu, ts, tr)

	return nil
}

// Failed returns the number of units left out of the total
func (s *StatsCollector) Failed() int {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.failed
}

// Count returns the number of samples recorded for stage fid
func (s *StatsCollector) Count(fid int) int {

	s.mu.Lock()
	defer s.mu.Unlock()

	if fid < 0 || fid >= len(s.rows) {
		return 0
	}
	return len(s.rows[fid].real)
}

type statSummary struct {
	min, mean, max, stddev float64
}

// summarize converts millisecond samples to second statistics
func summarize(x []float64) statSummary {

	mean, std := stat.MeanStdDev(x, nil)
	if len(x) < 2 || math.IsNaN(std) {
		std = 0
	}
	return statSummary{
		min:    floats.Min(x) / 1000,
		mean:   mean / 1000,
		max:    floats.Max(x) / 1000,
		stddev: std / 1000,
	}
}

// Report prints one line per stage and clock, then the total rows
func (s *StatsCollector) Report(w io.Writer) {

	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(w, "%-9s %-5s %-9s %-9s %-9s %-9s\n", "fid-type", "units", "min(s)", "mean(s)", "max(s)", "stddev(s)")

	for id, row := range s.rows {
		prefix := fmt.Sprintf("%d-", id)
		if id == s.fid {
			prefix = "tot-"
		}
		clocks := []struct {
			name    string
			samples []float64
		}{
			{"user", row.user},
			{"sys", row.sys},
			{"real", row.real},
		}
		for _, clk := range clocks {
			label := prefix + clk.name
			if len(clk.samples) == 0 {
				fmt.Fprintf(w, "%-9s %-5d %-9s %-9s %-9s %-9s\n", label, 0, "-", "-", "-", "-")
				continue
			}
			sm := summarize(clk.samples)
			fmt.Fprintf(w, "%-9s %-5d %-9.2f %-9.2f %-9.2f %-9.2f\n",
				label, len(clk.samples)/row.scale, sm.min, sm.mean, sm.max, sm.stddev)
		}
	}

	total := len(s.rows[s.fid].real)
	noun := "unit"
	if total != 1 {
		noun = inflector.Pluralize(noun)
	}
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "%d %s completed, %d failed upstream\n", total, noun, s.failed)
}

// ClockSummary is the JSON form of one clock's statistics, in seconds
type ClockSummary struct {
	Min    float64 `json:"min"`
	Mean   float64 `json:"mean"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stddev"`
}

// StageSummary is the JSON form of one row
type StageSummary struct {
	Stage string        `json:"stage"`
	Units int           `json:"units"`
	User  *ClockSummary `json:"user,omitempty"`
	Sys   *ClockSummary `json:"sys,omitempty"`
	Real  *ClockSummary `json:"real,omitempty"`
}

// StatsSnapshot is a consistent copy of the collector's state
type StatsSnapshot struct {
	Stages    []StageSummary `json:"stages"`
	Completed int            `json:"completed"`
	Failed    int            `json:"failed"`
}

func clockSummary(x []float64) *ClockSummary {

	if len(x) == 0 {
		return nil
	}
	sm := summarize(x)
	return &ClockSummary{Min: sm.min, Mean: sm.mean, Max: sm.max, StdDev: sm.stddev}
}

// Snapshot summarizes the samples collected so far. It may be called while
// units are still being added.
func (s *StatsCollector) Snapshot() StatsSnapshot {

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		Completed: len(s.rows[s.fid].real),
		Failed:    s.failed,
	}
	for id, row := range s.rows {
		name := fmt.Sprintf("%d", id)
		if id == s.fid {
			name = "tot"
		}
		snap.Stages = append(snap.Stages, StageSummary{
			Stage: name,
			Units: len(row.real) / row.scale,
			User:  clockSummary(row.user),
			Sys:   clockSummary(row.sys),
			Real:  clockSummary(row.real),
		})
	}
	return snap
}
