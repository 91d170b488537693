// Copyright 2024-2026 Aiku AI

package importer

import (
	"fmt"

	"github.com/aiku/rocketchat-zulip/pkg/rocketchat"
	"github.com/aiku/rocketchat-zulip/pkg/zulip"
)

// ConvertUsers assigns every source user a target id and registers the
// converted profile with the user handler.
func (cc *ConversionContext) ConvertUsers(users []*rocketchat.User) error {
	joined := zulip.UnixSeconds(cc.Now)
	for _, src := range users {
		profile, err := cc.convertUser(src, joined)
		if err != nil {
			return err
		}
		if err = cc.UserHandler.Add(profile); err != nil {
			return err
		}
		cc.Usernames[src.Username] = src.ID
		cc.Stats.Users++
	}
	cc.Log.Info().Int("count", cc.Stats.Users).Msg("Converted users")
	return nil
}

func (cc *ConversionContext) convertUser(src *rocketchat.User, joined float64) (*zulip.UserProfile, error) {
	mirrorDummy := src.Type != rocketchat.UserTypeUser
	email, ok := src.PrimaryEmail()
	if !ok {
		if !mirrorDummy {
			return nil, fmt.Errorf("%w: user %s (%s) has no email", ErrMissingField, src.ID, src.Username)
		}
		email = fmt.Sprintf("%s-%s@%s", src.Username, src.Type, cc.Domain)
		cc.Log.Debug().
			Str("user_id", src.ID).
			Str("email", email).
			Msg("Using placeholder email for non-user account")
	}

	fullName := src.Name
	if fullName == "" {
		fullName = src.Username
	}

	return &zulip.UserProfile{
		ID:            cc.Users.Get(src.ID),
		Realm:         cc.RealmID,
		FullName:      fullName,
		ShortName:     src.Username,
		Email:         email,
		DeliveryEmail: email,
		Role:          userRole(src),
		IsActive:      !mirrorDummy,
		IsMirrorDummy: mirrorDummy,
		AvatarSource:  zulip.AvatarSourceGravatar,
		DateJoined:    joined,
		LastLogin:     joined,
		Timezone:      zulip.DefaultTimezone,
	}, nil
}

func userRole(src *rocketchat.User) int {
	switch {
	case src.HasRole("admin"):
		return zulip.RoleRealmOwner
	case src.HasRole("guest"):
		return zulip.RoleGuest
	default:
		return zulip.RoleMember
	}
}
