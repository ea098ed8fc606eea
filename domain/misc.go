package domain

type SortDir int8

const (
	SortDirAsc  = 1
	SortDirDesc = -1
)

// UserId identifies an account
type UserId string

func (id UserId) String() string {
	return string(id)
}

func (id UserId) IsEmpty() bool {
	return len(id) == 0
}

func (id UserId) Equals(other UserId) bool {
	return id == other
}

// Role is an account role
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleMerchant Role = "merchant"
	RoleBidder   Role = "bidder"
)

func ToRole(name string) (Role, error) {
	switch Role(name) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleMerchant:
		return RoleMerchant, nil
	case RoleBidder:
		return RoleBidder, nil
	}
	return "", ErrBadParamInput
}
