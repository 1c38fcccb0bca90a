package models

import "fmt"

// GroupRelation names one of the five group lists attached to a repository.
type GroupRelation string

const (
	RelationAdmin      GroupRelation = "admin"
	RelationReadAllow  GroupRelation = "read_allow"
	RelationReadDeny   GroupRelation = "read_deny"
	RelationWriteAllow GroupRelation = "write_allow"
	RelationWriteDeny  GroupRelation = "write_deny"
)

// Repository is an administrative boundary holding zero or more containers
// stored below Path.
type Repository struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`

	AdminGroups      []int64 `json:"admin_groups"`
	ReadAllowGroups  []int64 `json:"read_allow_groups"`
	ReadDenyGroups   []int64 `json:"read_deny_groups"`
	WriteAllowGroups []int64 `json:"write_allow_groups"`
	WriteDenyGroups  []int64 `json:"write_deny_groups"`
}

// AddGroup attaches groupID to the list identified by relation.
func (r *Repository) AddGroup(relation GroupRelation, groupID int64) error {
	switch relation {
	case RelationAdmin:
		r.AdminGroups = append(r.AdminGroups, groupID)
	case RelationReadAllow:
		r.ReadAllowGroups = append(r.ReadAllowGroups, groupID)
	case RelationReadDeny:
		r.ReadDenyGroups = append(r.ReadDenyGroups, groupID)
	case RelationWriteAllow:
		r.WriteAllowGroups = append(r.WriteAllowGroups, groupID)
	case RelationWriteDeny:
		r.WriteDenyGroups = append(r.WriteDenyGroups, groupID)
	default:
		return fmt.Errorf("unknown group relation %q", relation)
	}
	return nil
}

// Relations returns every (relation, group) pair of the repository.
func (r Repository) Relations() map[GroupRelation][]int64 {
	return map[GroupRelation][]int64{
		RelationAdmin:      r.AdminGroups,
		RelationReadAllow:  r.ReadAllowGroups,
		RelationReadDeny:   r.ReadDenyGroups,
		RelationWriteAllow: r.WriteAllowGroups,
		RelationWriteDeny:  r.WriteDenyGroups,
	}
}

// AccessMode is the permission level requested from a repository.
type AccessMode string

const (
	ModeRead      AccessMode = "R"
	ModeReadWrite AccessMode = "RW"
	ModeAdmin     AccessMode = "A"
)
