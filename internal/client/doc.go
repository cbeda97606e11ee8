// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the on-device agent runtime.
//
// It wires the local record services, the sync engine, and its background
// workers into a single process lifecycle: crash recovery, startup sync,
// and signal-driven shutdown.
package client
