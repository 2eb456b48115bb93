package mcp

import (
	"testing"

	"github.com/Donekulda/openproject-mcp-server/internal/domain"
	"github.com/stretchr/testify/assert"
)

func sampleProjects() []domain.Project {
	return []domain.Project{
		{ID: 1, Name: "Platform", Identifier: "platform", Active: true},
		{ID: 2, Name: "Mobile App", Identifier: "mobile-app", Active: true, ParentID: 1},
		{ID: 3, Name: "Legacy Portal", Identifier: "legacy-portal", Active: false},
		{ID: 4, Name: "Stray Child", Identifier: "stray-child", Active: true, ParentID: 99},
	}
}

func TestFormatProjectList(t *testing.T) {
	out := formatProjectList(sampleProjects())
	assert.Contains(t, out, "✅ Found 4 project(s):")
	assert.Contains(t, out, "- **Platform** (ID: 1, identifier: platform) - Active")
	assert.Contains(t, out, "- **Legacy Portal** (ID: 3, identifier: legacy-portal) - Inactive")
}

func TestFormatProjectList_Empty(t *testing.T) {
	assert.Equal(t, "No projects found.", formatProjectList(nil))
}

func TestFormatProjectHierarchy(t *testing.T) {
	out := formatProjectHierarchy(sampleProjects())

	assert.Contains(t, out, "✅ Found 4 project(s) in hierarchical view:")
	assert.Contains(t, out, "- **Platform** (ID: 1)")
	assert.Contains(t, out, "  - **Mobile App** (ID: 2)")
	assert.Contains(t, out, "**Subprojects (parent not shown)**:")
	assert.Contains(t, out, "- **Stray Child** (ID: 4)")
	assert.NotContains(t, out, "  - **Stray Child**")
}

func TestFormatProjectDetail(t *testing.T) {
	out := formatProjectDetail(domain.Project{
		ID: 7, Name: "Billing", Identifier: "billing", Active: true, Public: false,
		Description: "Invoicing and payments.",
		CreatedAt:   "2024-01-15T09:00:00Z",
	})

	assert.Contains(t, out, "✅ Project #7")
	assert.Contains(t, out, "**Name**: Billing")
	assert.Contains(t, out, "**Status**: Active")
	assert.Contains(t, out, "**Public**: No")
	assert.Contains(t, out, "**Description**:\nInvoicing and payments.")
	assert.Contains(t, out, "**Created**: 2024-01-15T09:00:00Z")
	assert.NotContains(t, out, "**Updated**")
}
