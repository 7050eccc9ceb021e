// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the modcollect command line interface.
//
// Every command is built by a newXCommand(app) constructor and receives the
// App composition root, which carries the configuration provider, the
// application launcher and the output streams. Commands that operate on a
// declaration open a session: configuration, logger, declaration and the
// collect.Project built from them.
package cmd
