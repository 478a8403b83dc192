package api

import (
	"net/http"
)

// handleWatch upgrades to a websocket and streams a snapshot on every
// engine state change. The client never sends application messages; the
// read loop only services close frames.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("watch_upgrade_failed session=%s err=%v", sess.id, err)
		return
	}

	// Current state first, so a watcher joining mid-run renders
	// immediately instead of waiting for the next change.
	if err := conn.WriteJSON(sess.eng.Snapshot()); err != nil {
		conn.Close()
		return
	}
	sess.addWatcher(conn)
	s.logger.Printf("watcher_joined session=%s remote=%s", sess.id, r.RemoteAddr)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	sess.removeWatcher(conn)
	conn.Close()
	s.logger.Printf("watcher_left session=%s remote=%s", sess.id, r.RemoteAddr)
}
