package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"galleryd/internal/domain"
)

// BadgerRepository implements the Repository interface using an in-memory BadgerDB.
type BadgerRepository struct {
	db  *badger.DB
	ttl time.Duration
	log logrus.FieldLogger
}

// NewBadgerRepository opens an in-memory BadgerDB. Recorded replies expire after ttl.
func NewBadgerRepository(ttl time.Duration, logger logrus.FieldLogger) (*BadgerRepository, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		logger.WithError(err).Error("Failed to open BadgerDB")
		return nil, fmt.Errorf("failed to open in-memory badger db: %w", err)
	}
	logger.WithField("ttl", ttl.String()).Info("Reply ledger opened")

	return &BadgerRepository{
		db:  db,
		ttl: ttl,
		log: logger.WithField("component", "repository"),
	}, nil
}

// Close closes the BadgerDB database.
func (r *BadgerRepository) Close() error {
	r.log.Info("Closing BadgerDB...")
	if err := r.db.Close(); err != nil {
		r.log.WithError(err).Error("Error closing BadgerDB")
		return err
	}
	r.log.Info("BadgerDB closed.")
	return nil
}

// generateReplyKey creates the key of a single reply.
// Format: origin:{channelID}:{originID}:reply:{replyID}
func generateReplyKey(reply domain.Reply) []byte {
	return []byte(fmt.Sprintf("origin:%s:%s:reply:%s", reply.ChannelID, reply.OriginID, reply.ReplyID))
}

// generateOriginPrefix creates the prefix shared by all replies to a message.
// Format: origin:{channelID}:{originID}:reply:
func generateOriginPrefix(channelID, originID string) []byte {
	return []byte(fmt.Sprintf("origin:%s:%s:reply:", channelID, originID))
}

// RecordReply stores a reply with the repository's TTL.
func (r *BadgerRepository) RecordReply(ctx context.Context, reply domain.Reply) error {
	log := r.log.WithFields(logrus.Fields{
		"channel_id": reply.ChannelID,
		"origin_id":  reply.OriginID,
		"reply_id":   reply.ReplyID,
	})

	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now()
	}

	replyBytes, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(generateReplyKey(reply), replyBytes).WithTTL(r.ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		log.WithError(err).Error("Failed to record reply")
		return fmt.Errorf("failed to record reply: %w", err)
	}

	log.Debug("Reply recorded")
	return nil
}

// RepliesFor returns the unexpired replies to a message, oldest first.
func (r *BadgerRepository) RepliesFor(ctx context.Context, channelID, originID string) ([]domain.Reply, error) {
	var replies []domain.Reply

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := generateOriginPrefix(channelID, originID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var reply domain.Reply
				if err := json.Unmarshal(val, &reply); err != nil {
					return fmt.Errorf("failed to unmarshal reply for key %s: %w", string(item.Key()), err)
				}
				replies = append(replies, reply)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.log.WithError(err).WithField("origin_id", originID).Error("Failed to read replies")
		return nil, fmt.Errorf("failed to get replies for message %s: %w", originID, err)
	}

	sort.SliceStable(replies, func(i, j int) bool {
		return replies[i].CreatedAt.Before(replies[j].CreatedAt)
	})
	return replies, nil
}

// Forget deletes every reply recorded for a message. Forgetting an unknown
// message is not an error.
func (r *BadgerRepository) Forget(ctx context.Context, channelID, originID string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)

		var keys [][]byte
		prefix := generateOriginPrefix(channelID, originID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.log.WithError(err).WithField("origin_id", originID).Error("Failed to forget replies")
		return fmt.Errorf("failed to forget replies for message %s: %w", originID, err)
	}
	return nil
}

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}
func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warningf(f, v...)
}
func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Infof(f, v...)
}
func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
