package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
var tagRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

func ValidateRegister(email, username, displayName, password string) ValidationErrors {
	errs := make(ValidationErrors)

	// Email
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	// Username
	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) < 3 {
		errs.Add("username", "Username must be at least 3 characters")
	} else if len(username) > 50 {
		errs.Add("username", "Username is too long")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers, _ and -")
	}

	// Display name
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		errs.Add("display_name", "Display name is required")
	} else if len(displayName) < 2 {
		errs.Add("display_name", "Display name must be at least 2 characters")
	} else if len(displayName) > 100 {
		errs.Add("display_name", "Display name is too long")
	}

	// Password
	validatePassword(password, errs)

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidateItem(title, description string, tags []string) ValidationErrors {
	errs := make(ValidationErrors)

	title = strings.TrimSpace(title)
	if title == "" {
		errs.Add("title", "Title is required")
	} else if len(title) < 2 {
		errs.Add("title", "Title must be at least 2 characters")
	} else if len(title) > 200 {
		errs.Add("title", "Title is too long")
	}

	if len(description) > 5000 {
		errs.Add("description", "Description is too long")
	}

	validateTags(tags, errs)

	return errs
}

func validateTags(tags []string, errs ValidationErrors) {
	if len(tags) > 20 {
		errs.Add("tags", "Too many tags, 20 at most")
		return
	}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if len(tag) > 50 || !tagRegex.MatchString(tag) {
			errs.Add("tags", "Tags can only contain lowercase letters, numbers and dashes")
			break
		}
	}
}

func ValidateItemUpdate(title, description *string, tags *[]string) ValidationErrors {
	errs := make(ValidationErrors)

	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			errs.Add("title", "Title cannot be empty")
		} else if len(t) < 2 {
			errs.Add("title", "Title must be at least 2 characters")
		} else if len(t) > 200 {
			errs.Add("title", "Title is too long")
		}
	}

	if description != nil && len(*description) > 5000 {
		errs.Add("description", "Description is too long")
	}

	if tags != nil {
		validateTags(*tags, errs)
	}

	return errs
}

func ValidateProfileUpdate(displayName, avatarURL *string) ValidationErrors {
	errs := make(ValidationErrors)

	if displayName != nil {
		name := strings.TrimSpace(*displayName)
		if name == "" {
			errs.Add("display_name", "Display name cannot be empty")
		} else if len(name) < 2 {
			errs.Add("display_name", "Display name must be at least 2 characters")
		} else if len(name) > 100 {
			errs.Add("display_name", "Display name is too long")
		}
	}

	if avatarURL != nil && *avatarURL != "" {
		if u, err := url.Parse(*avatarURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs.Add("avatar_url", "Avatar URL must be a valid http(s) URL")
		}
	}

	return errs
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	missing := []string{}
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		errs.Add("password", fmt.Sprintf("Password must contain at least %s", strings.Join(missing, ", ")))
	}
}
