package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstBlood      BookmarkType = "first_blood"
	BookmarkPlayerDestroyed BookmarkType = "player_destroyed"
	BookmarkLockFrenzy      BookmarkType = "lock_frenzy"
	BookmarkTorpedoSalvo    BookmarkType = "torpedo_salvo"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in an engagement.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	totalKills   int
	playerSeen   bool
	playerLogged bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	// First blood: the first window with a kill
	if bd.totalKills == 0 && stats.Kills > 0 {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkFirstBlood,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("First kill at %.0fs", stats.SimTimeSec),
		})
	}
	bd.totalKills += stats.Kills

	// Player destroyed: fires once when the player stops being alive
	if stats.PlayerAlive {
		bd.playerSeen = true
	} else if bd.playerSeen && !bd.playerLogged {
		bd.playerLogged = true
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkPlayerDestroyed,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Player lost with %d vessels afloat", stats.VesselsAlive),
		})
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkLockFrenzy(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkTorpedoSalvo(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkLockFrenzy fires when locks in a window exceed twice the rolling average.
func (bd *BookmarkDetector) checkLockFrenzy(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 2 {
		return nil
	}
	var total int
	for _, h := range history {
		total += h.Locks
	}
	avg := float64(total) / float64(len(history))
	if stats.Locks >= 3 && float64(stats.Locks) > avg*2 {
		return &Bookmark{
			Type:        BookmarkLockFrenzy,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d locks is %.1fx average (%.2f)", stats.Locks, float64(stats.Locks)/max(avg, 1e-9), avg),
		}
	}
	return nil
}

// checkTorpedoSalvo fires when launches in a window exceed twice the rolling average.
func (bd *BookmarkDetector) checkTorpedoSalvo(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 2 {
		return nil
	}
	var total int
	for _, h := range history {
		total += h.TorpedoesFired
	}
	avg := float64(total) / float64(len(history))
	if stats.TorpedoesFired >= 4 && float64(stats.TorpedoesFired) > avg*2 {
		return &Bookmark{
			Type:        BookmarkTorpedoSalvo,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d torpedoes in water, %d fired this window", stats.TorpedoesInWater, stats.TorpedoesFired),
		}
	}
	return nil
}
