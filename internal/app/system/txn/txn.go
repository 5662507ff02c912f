// Package txn runs multi-document writes inside a MongoDB transaction,
// degrading to a plain call on deployments without transaction support
// (standalone servers used in development).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes meaning "transactions are unavailable here":
// IllegalOperation (20), NoReplicationEnabled (51), OperationNotSupportedInTransaction (263).
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

var notSupportedWords = []string{"transaction", "replica set", "session", "not supported", "illegal operation"}

// IsNotSupported reports whether err indicates the server cannot run
// transactions. Plain errors match when at least two of the known phrases
// appear in the message.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && notSupportedCodes[ce.Code] {
		return true
	}
	msg := strings.ToLower(err.Error())
	hits := 0
	for _, w := range notSupportedWords {
		if strings.Contains(msg, w) {
			hits++
		}
	}
	return hits >= 2
}

// Run executes fn inside a transaction on client. fn receives the session
// context and must use it for every operation that belongs to the batch.
func Run(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

// RunOrFallback is Run, except that when the deployment cannot run
// transactions fn is retried once without one and a warning is logged.
// A nil client always takes the fallback path.
func RunOrFallback(ctx context.Context, client *mongo.Client, log *zap.Logger, op string, fn func(ctx context.Context) error) error {
	if client == nil {
		return fn(ctx)
	}
	err := Run(ctx, client, fn)
	if err == nil || !IsNotSupported(err) {
		return err
	}
	if log != nil {
		log.Warn("transactions unavailable, running without one",
			zap.String("operation", op),
			zap.Error(err))
	}
	return fn(ctx)
}
