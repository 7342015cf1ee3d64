// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend is the HTTP client for the MediBot analysis service.
//
// The service does all the medical work (symptom analysis, image analysis,
// BMI classification, mood insight and CBT exercise generation, symptom
// logging). This package only moves JSON across the wire.
//
// # Key Types
//
//   - Client: thread-safe client with retries, rate limiting and request ids
//   - Config: base URL, timeout, retry and rate settings
//   - Error: typed failure (connection, timeout, status, decode)
//
// # Endpoints
//
//   - POST /chat           {query, history}              -> {response}
//   - POST /analyze-image  {image}                       -> {response}
//   - POST /calculate-bmi  {weight, height}              -> {bmi, category}
//   - POST /mood           {description, score, tags}    -> {response, type}
//   - POST /cbt            {concern, tried_strategies, desired_outcome} -> {response, type}
//   - POST /symptoms       SymptomEntry                  -> {status, inserted_id}
//
// # Usage
//
//	client := backend.NewClient(backend.DefaultConfig())
//	reply, err := client.Chat(ctx, "I have a headache", history)
//	if backend.IsConnection(err) {
//	    // service is down
//	}
package backend
