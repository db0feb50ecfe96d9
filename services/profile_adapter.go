package services

import (
	"fmt"
	"strconv"
	"strings"

	"roster-lab/domain/roster"
	"roster-lab/repositories"
)

var (
	nameFields  = []string{"displayName", "name", "nombre", "fullName"}
	emailFields = []string{"email", "correo", "mail"}
	phoneFields = []string{"phone", "telefono", "phoneNumber"}
)

// ToMemberView is the only place that knows how profile records spell their
// fields. Nothing else in the engine reads a ProfileRecord.
func ToMemberView(id string, record repositories.ProfileRecord) roster.MemberView {
	view := roster.MemberView{
		ID:           id,
		DisplayName:  firstString(record, nameFields),
		ContactEmail: firstString(record, emailFields),
		ContactPhone: firstString(record, phoneFields),
	}
	if view.DisplayName == "" {
		view.DisplayName = view.ContactEmail
	}
	if view.DisplayName == "" {
		view.DisplayName = roster.PlaceholderName
	}
	return view
}

func firstString(record repositories.ProfileRecord, fields []string) string {
	for _, field := range fields {
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case fmt.Stringer:
			s = v.String()
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case int, int64:
			s = fmt.Sprint(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
