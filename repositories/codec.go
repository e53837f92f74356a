package repositories

import (
	"direct-chat/domain"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Values stored in Badger use the protobuf wire format so records stay
// forward compatible: unknown field numbers are skipped on read.
//
//	user:    1=id 2=username 3=password_hash 4=created_at(unix nano)
//	message: 1=id 2=sender_id 3=receiver_id 4=content 5=at(unix nano)

const (
	userFieldID protowire.Number = iota + 1
	userFieldUsername
	userFieldPasswordHash
	userFieldCreatedAt
)

const (
	messageFieldID protowire.Number = iota + 1
	messageFieldSenderID
	messageFieldReceiverID
	messageFieldContent
	messageFieldAt
)

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendTime(b []byte, num protowire.Number, t time.Time) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(t.UnixNano()))
}

func marshalUser(u domain.User) []byte {
	var b []byte
	b = appendString(b, userFieldID, u.ID.String())
	b = appendString(b, userFieldUsername, u.Username)
	b = appendString(b, userFieldPasswordHash, u.PasswordHash)
	b = appendTime(b, userFieldCreatedAt, u.CreatedAt)
	return b
}

func unmarshalUser(b []byte) (domain.User, error) {
	var u domain.User
	var id string
	err := consumeFields(b, func(num protowire.Number, s string, v uint64) {
		switch num {
		case userFieldID:
			id = s
		case userFieldUsername:
			u.Username = s
		case userFieldPasswordHash:
			u.PasswordHash = s
		case userFieldCreatedAt:
			u.CreatedAt = time.Unix(0, int64(v)).UTC()
		}
	})
	if err != nil {
		return domain.User{}, err
	}
	if u.ID, err = uuid.Parse(id); err != nil {
		return domain.User{}, fmt.Errorf("user %q: %w", u.Username, err)
	}
	return u, nil
}

func marshalMessage(m domain.Message) []byte {
	var b []byte
	b = appendString(b, messageFieldID, m.ID.String())
	b = appendString(b, messageFieldSenderID, m.SenderID.String())
	b = appendString(b, messageFieldReceiverID, m.ReceiverID.String())
	b = appendString(b, messageFieldContent, m.Content)
	b = appendTime(b, messageFieldAt, m.CreatedAt)
	return b
}

func unmarshalMessage(b []byte) (domain.Message, error) {
	var m domain.Message
	var ids [3]string
	err := consumeFields(b, func(num protowire.Number, s string, v uint64) {
		switch num {
		case messageFieldID:
			ids[0] = s
		case messageFieldSenderID:
			ids[1] = s
		case messageFieldReceiverID:
			ids[2] = s
		case messageFieldContent:
			m.Content = s
		case messageFieldAt:
			m.CreatedAt = time.Unix(0, int64(v)).UTC()
		}
	})
	if err != nil {
		return domain.Message{}, err
	}
	for i, target := range []*uuid.UUID{&m.ID, &m.SenderID, &m.ReceiverID} {
		if *target, err = uuid.Parse(ids[i]); err != nil {
			return domain.Message{}, err
		}
	}
	return m, nil
}

// consumeFields walks a wire encoded record and reports every string and
// varint field. Other wire types are skipped.
func consumeFields(b []byte, visit func(num protowire.Number, s string, v uint64)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch typ {
		case protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			visit(num, s, 0)
			b = b[n:]
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			visit(num, "", v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}
