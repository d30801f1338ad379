// Package thread rebuilds per-partner chat threads from the flat message list
// the upstream notification service exposes.
package thread

import "sort"

// Message is a single directed message between two users.
type Message struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"senderId"`
	ReceiverID int64  `json:"receiverId"`
	Body       string `json:"body"`
	SentAt     int64  `json:"sentAt"` // Unix seconds
}

// Thread is the conversation between the requesting user and one partner,
// ordered oldest first.
type Thread struct {
	PartnerID int64     `json:"partnerId"`
	Messages  []Message `json:"messages"`
}

// LastMessage returns the most recent message of the thread.
func (t Thread) LastMessage() Message {
	return t.Messages[len(t.Messages)-1]
}

// GroupByPartner splits a flat message list into one thread per conversation
// partner of selfID. Messages that do not involve selfID are dropped; a
// message from self to self keys to self. Threads are ordered by sent time,
// with the message ID breaking ties.
func GroupByPartner(messages []Message, selfID int64) map[int64]Thread {
	threads := make(map[int64]Thread)

	for _, m := range messages {
		var partner int64
		switch {
		case m.SenderID == selfID:
			partner = m.ReceiverID
		case m.ReceiverID == selfID:
			partner = m.SenderID
		default:
			continue
		}

		t := threads[partner]
		t.PartnerID = partner
		t.Messages = append(t.Messages, m)
		threads[partner] = t
	}

	for partner, t := range threads {
		sort.Slice(t.Messages, func(i, j int) bool {
			if t.Messages[i].SentAt != t.Messages[j].SentAt {
				return t.Messages[i].SentAt < t.Messages[j].SentAt
			}
			return t.Messages[i].ID < t.Messages[j].ID
		})
		threads[partner] = t
	}

	return threads
}
