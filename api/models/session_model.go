package models

import (
	"sync/atomic"
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/moyoez/diary-upload-go/transfer"
)

// SessionTTL is how long a session stays queryable after it was started.
var SessionTTL = 30 * time.Minute

var (
	uploadSessions = ttlworker.NewCache[string, *transfer.Session](SessionTTL)
	runningUploads atomic.Int32
)

// StoreSession registers s and counts it as running until FinishSession.
func StoreSession(s *transfer.Session) {
	uploadSessions.Set(s.Id(), s)
	runningUploads.Add(1)
}

// FinishSession marks a stored session as no longer running. It stays
// queryable until its TTL runs out or RemoveSession is called.
func FinishSession(s *transfer.Session) {
	runningUploads.Add(-1)
}

func LookupSession(sessionId string) (*transfer.Session, bool) {
	s := uploadSessions.Get(sessionId)
	return s, s != nil
}

func RemoveSession(sessionId string) {
	uploadSessions.Delete(sessionId)
}

// RunningUploads returns the number of sessions not yet terminal.
func RunningUploads() int {
	return int(runningUploads.Load())
}
