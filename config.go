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
// File Name:  config.go
//
// ==========================================================================

package isp

import (
	"fmt"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the environment settings shared by every stage
type Config struct {
	DbgFail  bool   `envconfig:"ISP_DBGFAIL" default:"false"`
	MD5Check bool   `envconfig:"ISP_MD5CHECK" default:"false"`
	IBacklog int    `envconfig:"ISP_IBACKLOG" default:"1"`
	OBacklog int    `envconfig:"ISP_OBACKLOG" default:"1"`
	LogLevel string `envconfig:"ISP_LOGLEVEL" default:"warn"`
}

// LoadConfig reads the configuration from the environment
func LoadConfig() (*Config, error) {

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.IBacklog < 0 || cfg.OBacklog < 0 {
		return nil, fmt.Errorf("negative backlog (%d, %d): %w", cfg.IBacklog, cfg.OBacklog, ErrInval)
	}
	return &cfg, nil
}

// DefaultConfig returns the settings used when the environment is empty
func DefaultConfig() *Config {

	return &Config{
		IBacklog: 1,
		OBacklog: 1,
		LogLevel: "warn",
	}
}
