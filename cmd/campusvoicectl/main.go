// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command campusvoicectl administers a CampusVoice installation: it applies
// migrations, creates admin accounts, imports articles, and sends contact
// messages to a running server.
package main

func main() {
	Execute()
}
