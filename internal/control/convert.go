package control

import (
	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/message"
)

// ToMessage converts a history entry for the wire.
func ToMessage(e history.Entry) message.Entry {
	return message.Entry{
		Ref:          e.Ref(),
		Content:      message.EncodeText(e.Content),
		FirstSeenAt:  e.FirstSeenAt,
		LastCopiedAt: e.LastCopiedAt,
		CopyCount:    e.CopyCount,
		Favorite:     e.Favorite,
		Name:         e.Name,
		Note:         e.Note,
	}
}

// FromMessage converts a wire entry back into a history entry.
func FromMessage(m message.Entry) (history.Entry, error) {
	content, err := m.Text()
	if err != nil {
		return history.Entry{}, err
	}
	return history.Entry{
		Content:      content,
		FirstSeenAt:  m.FirstSeenAt,
		LastCopiedAt: m.LastCopiedAt,
		CopyCount:    m.CopyCount,
		Favorite:     m.Favorite,
		Name:         m.Name,
		Note:         m.Note,
	}, nil
}

// Entries decodes every entry of a response.
func Entries(resp *message.Message) ([]history.Entry, error) {
	out := make([]history.Entry, 0, len(resp.Entries))
	for _, m := range resp.Entries {
		e, err := FromMessage(m)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func toMessages(es []history.Entry) []message.Entry {
	out := make([]message.Entry, len(es))
	for i, e := range es {
		out[i] = ToMessage(e)
	}
	return out
}
