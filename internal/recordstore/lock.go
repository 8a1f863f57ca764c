// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package recordstore

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

// ErrLockTimeout is returned when the store lock cannot be acquired within
// the configured wait. It is a transient condition: the caller should
// report "try again" rather than treat the store as broken.
var ErrLockTimeout = errors.New("recordstore: lock acquisition timed out")

const (
	// lockSuffix names the companion lock file beside the store file.
	lockSuffix = ".lock"

	// lockRetryInterval is how often a blocked acquisition retries flock.
	lockRetryInterval = 50 * time.Millisecond
)

// fileLock is an advisory cross-process lock held via flock(2) on the
// companion lock file. It serializes store access between processes on the
// same host; writers that bypass the store API are not protected against.
type fileLock struct {
	f *os.File
}

// acquireLock takes the exclusive lock on path+".lock", polling with a
// non-blocking flock until timeout elapses. The open file handle keeps the
// lock alive until release.
func acquireLock(path string, timeout time.Duration) (*fileLock, error) {
	f, err := os.OpenFile(path+lockSuffix, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return &fileLock{f: f}, nil
		}
		if err != syscall.EWOULDBLOCK && err != syscall.EAGAIN {
			f.Close()
			return nil, fmt.Errorf("flock: %w", err)
		}
		if time.Now().After(deadline) {
			f.Close()
			return nil, ErrLockTimeout
		}
		time.Sleep(lockRetryInterval)
	}
}

// release drops the lock and closes the handle. Safe to call once on every
// exit path; errors are swallowed since the lock dies with the fd anyway.
func (l *fileLock) release() {
	if l == nil || l.f == nil {
		return
	}
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	_ = l.f.Close()
	l.f = nil
}
