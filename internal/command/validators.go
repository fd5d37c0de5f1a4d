// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/staranto/rcachego/internal/backend"
	"github.com/staranto/rcachego/internal/config"
	"github.com/staranto/rcachego/internal/fingerprint"
	"github.com/staranto/rcachego/internal/output"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	if !slices.Contains(output.Formats, value.(string)) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

func BackendValidator(value any) error {
	if !slices.Contains(backend.Types, value.(string)) {
		return fmt.Errorf("must be one of %v", backend.Types)
	}
	return nil
}

func AlgorithmValidator(value any) error {
	_, err := fingerprint.ParseAlgorithm(value.(string))
	return err
}

// DurationValidator accepts Go durations plus whole days, and rejects
// negative windows.
func DurationValidator(value any) error {
	d, err := config.ParseDuration(value.(string))
	if err != nil {
		return err
	}
	if d < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
