// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracer

import (
	"time"

	"github.com/colbuild/serde/schema"
)

// The two patterns accepted by guess_dates (§4.3).
const (
	naiveLayout = "2006-01-02T15:04:05"
	utcLayout   = "2006-01-02T15:04:05Z"
)

type dateMode uint8

const (
	dateUndecided dateMode = iota
	dateNaive
	dateUTC
	dateNever
)

// dateState tracks guess_dates progress for one string-typed leaf.
//
// The first value that matches either pattern commits this field to
// that pattern ("first wins"); every later value must match the SAME
// pattern or tracing fails outright with [schema.InvalidDateError]
// ("mismatch fails", not a
// silent revert to plain string). Only a field whose very first
// observed value matches neither pattern is left undecided forever,
// which simply means guess_dates never applies and the field finalizes
// as an ordinary string.
type dateState struct {
	mode dateMode
	// sample is the last string observed, reported by a failed merge.
	sample string
}

func matchesNaive(s string) bool {
	_, err := time.Parse(naiveLayout, s)
	return err == nil
}

func matchesUTC(s string) bool {
	_, err := time.Parse(utcLayout, s)
	return err == nil
}

// observe folds one string value into ds, returning an
// [schema.InvalidDateError] if it breaks a pattern this field already
// committed to.
func (ds *dateState) observe(s string, path []string) error {
	ds.sample = s
	if ds.mode == dateNever {
		return nil
	}
	naiveOK, utcOK := matchesNaive(s), matchesUTC(s)
	switch ds.mode {
	case dateUndecided:
		switch {
		case naiveOK:
			ds.mode = dateNaive
		case utcOK:
			ds.mode = dateUTC
		default:
			ds.mode = dateNever
		}
		return nil
	case dateNaive:
		if !naiveOK {
			return &schema.InvalidDateError{PathError: schema.PathError{Path: path}, Value: s, Format: string(schema.StrategyNaiveStrAsDate64)}
		}
	case dateUTC:
		if !utcOK {
			return &schema.InvalidDateError{PathError: schema.PathError{Path: path}, Value: s, Format: string(schema.StrategyUtcStrAsDate64)}
		}
	}
	return nil
}

// strategy returns the committed date strategy, or [schema.StrategyNone]
// if this field never committed to one.
func (ds *dateState) strategy() schema.Strategy {
	switch ds.mode {
	case dateNaive:
		return schema.StrategyNaiveStrAsDate64
	case dateUTC:
		return schema.StrategyUtcStrAsDate64
	default:
		return schema.StrategyNone
	}
}

// mergeDates combines two date-guess observations for the same field
// across two merged subtrees, a being the earlier one, deferring to
// whichever side already committed. An earlier side that matched
// neither pattern keeps the field a plain string; any other pair of
// differing sides is a conflict.
func mergeDates(a, b *dateState) (*dateState, error) {
	switch {
	case a == nil:
		return b, nil
	case b == nil:
		return a, nil
	case a.mode == dateUndecided:
		return b, nil
	case b.mode == dateUndecided:
		return a, nil
	case a.mode == dateNever:
		return a, nil
	case a.mode == b.mode:
		return a, nil
	default:
		return nil, errDateModeConflict
	}
}
