package club

import "errors"

var (
	// ErrClubNotFound covers missing, disbanded, private-and-not-a-member,
	// and not-an-admin cases alike, so callers cannot probe for a club's
	// existence.
	ErrClubNotFound = errors.New("club not found")

	ErrValidation          = errors.New("invalid input")
	ErrDuplicateName       = errors.New("club name already exists")
	ErrDuplicateRequest    = errors.New("membership request already exists")
	ErrAlreadyMember       = errors.New("already a member")
	ErrClubPrivate         = errors.New("club is private")
	ErrRequestNotFound     = errors.New("membership request not found")
	ErrAlreadyEvaluated    = errors.New("membership request already evaluated")
	ErrMemberNotFound      = errors.New("member not found")
	ErrCannotRemoveCreator = errors.New("cannot remove the club creator")
)
