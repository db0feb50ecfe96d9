package roster

const PlaceholderName = "Unknown player"

// MemberView is the fixed shape of a member once its profile has been resolved.
type MemberView struct {
	ID           string
	DisplayName  string
	ContactEmail string
	ContactPhone string
	Placeholder  bool
}

func PlaceholderView(id string) MemberView {
	return MemberView{ID: id, DisplayName: PlaceholderName, Placeholder: true}
}
