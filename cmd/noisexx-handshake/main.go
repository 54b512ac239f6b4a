// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Command noisexx-handshake runs a two-peer Noise-XX handshake in-process
// over a net.Pipe and prints the resulting channel-binding hash and a
// round-tripped application message, for operators to sanity-check a build.
package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/urfave/cli/v2"

	noisexx "github.com/noisysockets/noise-xx"
	"github.com/noisysockets/noise-xx/config"
	"github.com/noisysockets/noise-xx/identity"
	"github.com/noisysockets/noise-xx/internal/noisecrypto"
)

func main() {
	var logger *slog.Logger

	app := &cli.App{
		Name:  "noisexx-handshake",
		Usage: "Run a demonstration Noise-XX handshake between two in-process peers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Set the log level (debug, info, warn, error)",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "initiator-config",
				Usage: "Path to a YAML config (config/v1alpha1) carrying the initiator's identity; generated ephemerally if omitted",
			},
			&cli.StringFlag{
				Name:  "responder-config",
				Usage: "Path to a YAML config (config/v1alpha1) carrying the responder's identity; generated ephemerally if omitted",
			},
		},
		Before: func(c *cli.Context) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			return nil
		},
		Action: func(c *cli.Context) error {
			return runDemo(logger, c.String("initiator-config"), c.String("responder-config"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		}
		logger.Error("handshake demo failed", "err", err)
		os.Exit(1)
	}
}

// loadOrGenerateIdentity loads an Ed25519 identity from a config file at
// path, or generates a fresh ephemeral one if path is empty.
func loadOrGenerateIdentity(path string) (*identity.Ed25519Identity, error) {
	if path == "" {
		return identity.NewEd25519Identity()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := config.Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", path, err)
	}

	return config.LoadEd25519Identity(cfg)
}

func runDemo(logger *slog.Logger, initiatorConfigPath, responderConfigPath string) error {
	alice, err := loadOrGenerateIdentity(initiatorConfigPath)
	if err != nil {
		return fmt.Errorf("failed to resolve initiator identity: %w", err)
	}
	bob, err := loadOrGenerateIdentity(responderConfigPath)
	if err != nil {
		return fmt.Errorf("failed to resolve responder identity: %w", err)
	}

	directory := noisexx.NewPeerDirectory()
	if err := directory.AddPeer("initiator", alice.PeerIDBytes()); err != nil {
		return fmt.Errorf("failed to register initiator peer id: %w", err)
	}
	if err := directory.AddPeer("responder", bob.PeerIDBytes()); err != nil {
		return fmt.Errorf("failed to register responder peer id: %w", err)
	}

	initiatorExpectedPeerID, _ := directory.LookupPeerIDByName("responder")
	responderExpectedPeerID, _ := directory.LookupPeerIDByName("initiator")

	aliceStaticPriv, aliceStaticPub, err := noisecrypto.GenerateKeypair()
	if err != nil {
		return fmt.Errorf("failed to generate initiator static key: %w", err)
	}
	bobStaticPriv, bobStaticPub, err := noisecrypto.GenerateKeypair()
	if err != nil {
		return fmt.Errorf("failed to generate responder static key: %w", err)
	}

	connA, connB := net.Pipe()
	defer connA.Close()
	defer connB.Close()

	initiator := noisexx.New(noisexx.Config{
		Role:                 noisexx.Initiator,
		StaticPrivateKey:     aliceStaticPriv,
		StaticPublicKey:      aliceStaticPub,
		Identity:             alice,
		Transport:            noisexx.NewTransport(connA),
		ExpectedRemotePeerID: initiatorExpectedPeerID,
		Logger:               logger.With("role", "initiator"),
	})
	responder := noisexx.New(noisexx.Config{
		Role:                 noisexx.Responder,
		StaticPrivateKey:     bobStaticPriv,
		StaticPublicKey:      bobStaticPub,
		Identity:             bob,
		Transport:            noisexx.NewTransport(connB),
		ExpectedRemotePeerID: responderExpectedPeerID,
		Logger:               logger.With("role", "responder"),
	})

	var initSession, respSession *noisexx.Session
	var initErr, respErr error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		initSession, initErr = runSide(initiator)
	}()
	go func() {
		defer wg.Done()
		respSession, respErr = runSide(responder)
	}()
	wg.Wait()

	if initErr != nil {
		return fmt.Errorf("initiator handshake failed: %w", initErr)
	}
	if respErr != nil {
		return fmt.Errorf("responder handshake failed: %w", respErr)
	}

	logger.Info("handshake complete",
		"channelBinding", fmt.Sprintf("%x", initSession.HandshakeHash()),
		"initiatorSawPeerID", base58.Encode(initSession.RemotePeerID()),
		"responderSawPeerID", base58.Encode(respSession.RemotePeerID()),
	)

	const message = "encryptthis"
	ciphertext, err := initSession.Encrypt([]byte(message))
	if err != nil {
		return fmt.Errorf("failed to encrypt demo message: %w", err)
	}
	plaintext, err := respSession.Decrypt(ciphertext)
	if err != nil {
		return fmt.Errorf("failed to decrypt demo message: %w", err)
	}

	logger.Info("round-tripped application message", "plaintext", string(plaintext))
	return nil
}

func runSide(hs *noisexx.XXHandshake) (*noisexx.Session, error) {
	if err := hs.Propose(); err != nil {
		hs.Abort()
		return nil, err
	}
	if err := hs.Exchange(); err != nil {
		hs.Abort()
		return nil, err
	}
	return hs.Finish()
}
