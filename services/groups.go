package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CUknot/social_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewGroupService(db *gorm.DB, log logrus.FieldLogger) *GroupService {
	return &GroupService{db: db, log: log}
}

// MemberInput is one entry of an add-members request
type MemberInput struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role"`
}

// GroupSummary is a group as seen by one of its members
type GroupSummary struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uint      `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int64     `json:"member_count"`
	YourRole    string    `json:"your_role"`
	JoinedAt    time.Time `json:"joined_at"`
}

func (s *GroupService) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	_, err := s.membership(ctx, groupID, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *GroupService) IsAdmin(ctx context.Context, groupID, userID uint) (bool, error) {
	member, err := s.membership(ctx, groupID, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return member.Role == models.GroupRoleAdmin, nil
}

func (s *GroupService) membership(ctx context.Context, groupID, userID uint) (*models.GroupMember, error) {
	var member models.GroupMember
	err := s.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "Not a group member")
	}
	if err != nil {
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return &member, nil
}

// Create makes owner the admin of a new group and adds every existing user
// of memberIDs as a member
func (s *GroupService) Create(ctx context.Context, owner *models.User, name, description string, memberIDs []uint) (*models.Group, error) {
	group := models.Group{Name: name, Description: description, OwnerID: owner.ID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return fmt.Errorf("create group: %w", err)
		}

		members := []models.GroupMember{{
			GroupID:  group.ID,
			UserID:   owner.ID,
			Role:     models.GroupRoleAdmin,
			JoinedAt: time.Now().UTC(),
		}}

		ids, err := existingUsers(tx, memberIDs)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if id == owner.ID {
				continue
			}
			members = append(members, models.GroupMember{
				GroupID:  group.ID,
				UserID:   id,
				Role:     models.GroupRoleMember,
				JoinedAt: time.Now().UTC(),
			})
		}

		if err := tx.Create(&members).Error; err != nil {
			return fmt.Errorf("add group members: %w", err)
		}
		group.Members = members
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"group_id": group.ID, "owner_id": owner.ID}).Info("Group created")
	return &group, nil
}

// AddMembers adds users to the group and returns how many were added.
// Only the owner or an admin member may add members.
func (s *GroupService) AddMembers(ctx context.Context, groupID uint, actor *models.User, members []MemberInput) (int, error) {
	for i := range members {
		if members[i].Role == "" {
			members[i].Role = models.GroupRoleMember
		}
		if members[i].Role != models.GroupRoleMember && members[i].Role != models.GroupRoleAdmin {
			return 0, newError(ErrValidation, fmt.Sprintf("invalid role %q", members[i].Role))
		}
	}

	var group models.Group
	err := s.db.WithContext(ctx).First(&group, groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, newError(ErrNotFound, "Group not found")
	}
	if err != nil {
		return 0, fmt.Errorf("find group: %w", err)
	}

	if group.OwnerID != actor.ID {
		admin, err := s.IsAdmin(ctx, groupID, actor.ID)
		if err != nil {
			return 0, err
		}
		if !admin {
			return 0, newError(ErrForbidden, "Not authorized")
		}
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}

	var added int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := existingUsers(tx, ids)
		if err != nil {
			return err
		}
		known := make(map[uint]bool, len(existing))
		for _, id := range existing {
			known[id] = true
		}

		for _, m := range members {
			if !known[m.UserID] {
				continue
			}
			known[m.UserID] = false

			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.GroupMember{
				GroupID:  groupID,
				UserID:   m.UserID,
				Role:     m.Role,
				JoinedAt: time.Now().UTC(),
			})
			if res.Error != nil {
				return fmt.Errorf("add group member: %w", res.Error)
			}
			added += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{"group_id": groupID, "added": added}).Info("Group members added")
	return added, nil
}

type membershipRow struct {
	GroupID     uint
	Role        string
	JoinedAt    time.Time
	MemberCount int64
}

// MyGroups lists the groups userID belongs to, oldest membership first
func (s *GroupService) MyGroups(ctx context.Context, userID uint, page Page) ([]GroupSummary, error) {
	db := s.db.WithContext(ctx)

	var rows []membershipRow
	if err := db.Table("group_members AS gm").
		Select("gm.group_id, gm.role, gm.joined_at, (SELECT COUNT(*) FROM group_members m WHERE m.group_id = gm.group_id) AS member_count").
		Where("gm.user_id = ?", userID).
		Order("gm.joined_at ASC").Order("gm.group_id ASC").
		Offset(page.Offset()).Limit(page.Size).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	if len(rows) == 0 {
		return []GroupSummary{}, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.GroupID)
	}
	var groups []models.Group
	if err := db.Find(&groups, ids).Error; err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	byID := make(map[uint]*models.Group, len(groups))
	for i := range groups {
		byID[groups[i].ID] = &groups[i]
	}

	out := make([]GroupSummary, 0, len(rows))
	for _, r := range rows {
		g, ok := byID[r.GroupID]
		if !ok {
			continue
		}
		out = append(out, GroupSummary{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			OwnerID:     g.OwnerID,
			CreatedAt:   g.CreatedAt,
			MemberCount: r.MemberCount,
			YourRole:    r.Role,
			JoinedAt:    r.JoinedAt,
		})
	}
	return out, nil
}

func existingUsers(tx *gorm.DB, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := tx.Model(&models.User{}).Where("id IN ?", ids).Order("id ASC").Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return found, nil
}
