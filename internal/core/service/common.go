package service

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/permission"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// newID returns a fresh document identifier.
func newID() string {
	return primitive.NewObjectID().Hex()
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func pageCount(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// percent returns part/total as a whole percentage, 0 when total is 0.
func percent(part, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func authorize(actor *domain.Account, action permission.Action, res permission.Resource) error {
	return permission.CanAccess(permission.ActorOf(actor), action, res).Err()
}

func formatDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("Jan 2, 2006")
}
