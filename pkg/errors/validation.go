package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// cIdentifierRegex matches valid C identifiers.
var cIdentifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// cKeywords are reserved words that cannot name a generated variable.
var cKeywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "typedef": true, "union": true,
	"unsigned": true, "void": true, "volatile": true, "while": true,
}

// ValidateIdentifier validates a global-parameter name.
// Names end up as variables in generated source, so they must be
// C identifiers and must not collide with a C keyword.
func ValidateIdentifier(name string) error {
	if name == "" {
		return New(ErrCodeUserData, "parameter name cannot be empty")
	}

	if len(name) > 63 {
		return New(ErrCodeUserData, "parameter name too long (max 63 characters): %q", name)
	}

	if !cIdentifierRegex.MatchString(name) {
		return New(ErrCodeUserData, "parameter name is not a valid identifier: %q", name)
	}

	if cKeywords[name] {
		return New(ErrCodeUserData, "parameter name is a reserved word: %q", name)
	}

	return nil
}

// ValidatePath validates an output path given on the command line or in a
// request. Unlike input documents, outputs must stay below the working
// directory when they are relative.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
