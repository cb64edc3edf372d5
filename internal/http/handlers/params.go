package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pintlog-backend/internal/platform/apierr"
	"github.com/yungbote/pintlog-backend/internal/services"
)

func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apierr.Validation(fmt.Errorf("invalid %s", name))
	}
	return id, nil
}

// queryUserID parses ?user_id=. Empty and "all" mean no filter.
func queryUserID(c *gin.Context) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query("user_id"))
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierr.Validation(fmt.Errorf("invalid user_id %q", raw))
	}
	return &id, nil
}

// queryUserIDs accepts repeated or comma separated ids.
func queryUserIDs(c *gin.Context) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, v := range c.QueryArray("user_id") {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" || strings.EqualFold(part, "all") {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, apierr.Validation(fmt.Errorf("invalid user_id %q", part))
			}
			out = append(out, id)
		}
	}
	return out, nil
}

func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apierr.Validation(fmt.Errorf("%s must be RFC3339", name))
	}
	return &t, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.Validation(fmt.Errorf("%s must be an integer", name))
	}
	return n, nil
}

// queryLocation reads ?tz= as an IANA zone name, UTC when absent.
func queryLocation(c *gin.Context) (*time.Location, error) {
	raw := strings.TrimSpace(c.Query("tz"))
	if raw == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(raw)
	if err != nil {
		return nil, apierr.Validation(fmt.Errorf("unknown tz %q", raw))
	}
	return loc, nil
}

func queryWindow(c *gin.Context) (services.Window, error) {
	start, err := queryTime(c, "start")
	if err != nil {
		return services.Window{}, err
	}
	end, err := queryTime(c, "end")
	if err != nil {
		return services.Window{}, err
	}
	return services.Window{Range: strings.TrimSpace(c.Query("range")), Start: start, End: end}, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apierr.Validation(fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}
