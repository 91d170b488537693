// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package importer converts a Rocket.Chat database snapshot into a Zulip
// data import bundle.
//
// A run is strictly sequential: users are converted first, then rooms are
// classified and turned into streams, recipients and subscriptions are
// built, and finally channel and direct messages are converted and written
// in fixed-size batches. The realm bundle is written last because it
// collects the reactions of every batch.
//
// # Core Types
//
// [ConversionContext] owns the per-run state: the [IDMapper]s that give
// users and streams dense integer ids, the [Sequencer] of named counters,
// and the [UserHandler] and [SubscriberHandler] stores.
//
// [MessageConverter] turns a raw message into a [ConvertedMessage] and
// decides its recipient and topic. Direct messages go to a personal
// recipient, discussions become a topic of their parent room's stream, and
// everything else lands in the room's main topic.
//
// [BatchEmitter] assigns message, delivery and reaction ids and hands each
// batch to a [BundleWriter].
//
// [Importer] runs the stages in order.
//
// # Sub-packages
//
//   - zulipfmt rewrites Rocket.Chat mentions to Zulip markdown.
package importer
