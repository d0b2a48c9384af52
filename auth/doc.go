// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential and identity key utilities.

# Identity Keys

Identity keys use HMAC-SHA256 over the username to create deterministic,
verifiable keys:

	key := auth.GenerateIdentityKey(username, salt)
	err := auth.ValidateIdentityKey(username, key, salt)

The key is URL-safe base64 encoded without padding. Clients receive it
from POST /auth and send it back in the X-Identity-Key header together
with X-Username. Nothing is stored server side; rotating the salt
invalidates every key.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, candidate)

# ID Generation

Random hex IDs, used for generated seed passwords:

	id, err := auth.GenerateID(8)  // 16 hex characters
*/
package auth
