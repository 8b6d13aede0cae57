package terminology

import "strings"

var versionedResources = map[string]bool{
	"concepts":    true,
	"mappings":    true,
	"sources":     true,
	"collections": true,
}

// SourceURI builds the URI of a source version, e.g. /orgs/WHO/sources/ICPC-2/
// for HEAD and /orgs/WHO/sources/ICPC-2/v11/ for a labelled version.
func SourceURI(ownerType, owner, mnemonic, version string) string {
	uri := "/" + ownerType + "/" + owner + "/sources/" + mnemonic + "/"
	if version != "" && version != HEAD {
		uri += version + "/"
	}
	return uri
}

// ChildURI builds the URI of a concept or mapping row under parentURI. The
// version segment is omitted for the versioned-object root.
func ChildURI(parentURI, kind, mnemonic, version string, root bool) string {
	uri := strings.TrimSuffix(parentURI, "/") + "/" + kind + "/" + mnemonic + "/"
	if !root && version != "" && !IsTempVersion(version) {
		uri += version + "/"
	}
	return uri
}

// DropVersion removes a trailing version segment from a resource URI.
func DropVersion(expression string) string {
	if expression == "" {
		return expression
	}

	parts := strings.Split(expression, "/")
	if len(parts) <= 4 {
		return expression
	}

	resource := parts[len(parts)-4]
	name := parts[len(parts)-3]
	version := parts[len(parts)-2]
	if versionedResources[resource] && name != "" && version != "" {
		return strings.Join(parts[:len(parts)-2], "/") + "/"
	}
	return expression
}

// IsVersionedURI reports whether expression ends in a version segment.
func IsVersionedURI(expression string) bool {
	return expression != DropVersion(expression)
}

// ToParentURI returns the container URI of a concept or mapping URI.
func ToParentURI(expression string) string {
	for _, splitter := range []string{"/concepts/", "/mappings/"} {
		if idx := strings.Index(expression, splitter); idx >= 0 {
			return expression[:idx] + "/"
		}
	}
	return expression
}

// SeparateVersion splits a trailing version segment off expression.
func SeparateVersion(expression string) (version, versionless string) {
	versionless = DropVersion(expression)
	if versionless != expression {
		return strings.ReplaceAll(strings.Replace(expression, versionless, "", 1), "/", ""), versionless
	}
	return "", expression
}

// CodeFromConceptURL extracts the concept mnemonic from a concept URI.
func CodeFromConceptURL(expression string) string {
	rest := strings.Replace(expression, ToParentURI(expression), "", 1)
	rest = strings.Replace(rest, "concepts/", "", 1)
	code, _, _ := strings.Cut(rest, "/")
	return code
}
