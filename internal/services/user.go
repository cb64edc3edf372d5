package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pintlog-backend/internal/bac"
	"github.com/yungbote/pintlog-backend/internal/data/repos"
	types "github.com/yungbote/pintlog-backend/internal/domain"
	"github.com/yungbote/pintlog-backend/internal/platform/apierr"
	"github.com/yungbote/pintlog-backend/internal/platform/ctxutil"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
	"github.com/yungbote/pintlog-backend/internal/realtime"
)

type ProfileUpdate struct {
	Name       *string                   `json:"name,omitempty"`
	Physiology *types.PhysiologySettings `json:"physiology,omitempty"`
}

type UserService interface {
	Me(ctx context.Context) (*types.User, error)
	UpdateProfile(ctx context.Context, in ProfileUpdate) (*types.User, error)
	List(ctx context.Context) ([]*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	presets  *bac.Presets
	emitter  SSEEmitter
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, presets *bac.Presets, emitter SSEEmitter) UserService {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
		presets:  presets,
		emitter:  emitter,
	}
}

func requireSession(ctx context.Context) (*ctxutil.Session, error) {
	s := ctxutil.GetSession(ctx)
	if !s.Valid() {
		return nil, apierr.Unauthorized(fmt.Errorf("no session in context"))
	}
	return s, nil
}

func rosterMessage(u *types.User) realtime.SSEMessage {
	return realtime.SSEMessage{
		Channel: realtime.ChannelUsers,
		Event:   realtime.SSEEventUserUpdated,
		Data:    map[string]any{"id": u.ID, "name": u.Name},
	}
}

func (us *userService) Me(ctx context.Context) (*types.User, error) {
	s, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	return us.userRepo.GetByID(ctx, nil, s.UserID)
}

func (us *userService) UpdateProfile(ctx context.Context, in ProfileUpdate) (*types.User, error) {
	s, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	var name string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apierr.Validation(fmt.Errorf("name must not be empty"))
		}
		if len(name) > 80 {
			return nil, apierr.Validation(fmt.Errorf("name is longer than 80 characters"))
		}
	}
	var physiology datatypes.JSON
	if in.Physiology != nil {
		settings := *in.Physiology
		settings.Profile = strings.ToLower(strings.TrimSpace(settings.Profile))
		base, err := us.presets.Profile(settings.Profile)
		if err != nil {
			return nil, apierr.Validation(err)
		}
		if err := settings.Resolve(base).Validate(); err != nil {
			return nil, apierr.Validation(err)
		}
		raw, err := json.Marshal(settings)
		if err != nil {
			return nil, err
		}
		physiology = datatypes.JSON(raw)
	}
	if name == "" && physiology == nil {
		return nil, apierr.Validation(fmt.Errorf("nothing to update"))
	}

	if err := us.userRepo.UpdateProfile(ctx, nil, s.UserID, name, physiology); err != nil {
		return nil, err
	}
	u, err := us.userRepo.GetByID(ctx, nil, s.UserID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		us.emitter.Emit(ctx, rosterMessage(u))
	}
	return u, nil
}

func (us *userService) List(ctx context.Context) ([]*types.User, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	out, err := us.userRepo.List(ctx, nil)
	return out, unavailable(err)
}

// physiologyFor resolves the Widmark parameters of one user: the named
// preset profile overlaid with explicit overrides.
func physiologyFor(presets *bac.Presets, u *types.User) bac.Physiology {
	settings, err := u.PhysiologySettings()
	if err != nil {
		settings = types.PhysiologySettings{}
	}
	base, err := presets.Profile(settings.Profile)
	if err != nil {
		base, _ = presets.Profile("")
	}
	return settings.Resolve(base)
}
