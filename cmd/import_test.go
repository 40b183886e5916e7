package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompaniesCSV(t *testing.T) {
	csvData := `name,url_site,url_linkedin,sector,employees_count
Alfa Capital,https://alfa.example.com.br,https://linkedin.com/company/alfa,Gestora,120
Beta Invest,https://beta.example.com.br,,Corretora,
`

	companies, err := parseCompaniesCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, companies, 2)

	assert.Equal(t, "Alfa Capital", companies[0].Name)
	assert.Equal(t, "https://alfa.example.com.br", companies[0].SiteURL)
	assert.Equal(t, "https://linkedin.com/company/alfa", companies[0].LinkedInURL)
	assert.Equal(t, "Gestora", companies[0].Sector)
	assert.Equal(t, 120, companies[0].EmployeeCount)

	assert.Equal(t, "Beta Invest", companies[1].Name)
	assert.Empty(t, companies[1].LinkedInURL)
	assert.Zero(t, companies[1].EmployeeCount)
}

func TestParseCompaniesCSVColumnOrder(t *testing.T) {
	csvData := `sector,name,url_site
Gestora,Gama Asset,https://gama.example.com.br
`

	companies, err := parseCompaniesCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Gama Asset", companies[0].Name)
	assert.Equal(t, "https://gama.example.com.br", companies[0].SiteURL)
	assert.Equal(t, "Gestora", companies[0].Sector)
}

func TestParseCompaniesCSVMissingNameColumn(t *testing.T) {
	csvData := `url_site,sector
https://alfa.example.com.br,Gestora
`

	_, err := parseCompaniesCSV(strings.NewReader(csvData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestParseCompaniesCSVSkipsBlankNames(t *testing.T) {
	csvData := `name,url_site
Alfa Capital,https://alfa.example.com.br
,https://anon.example.com.br
`

	companies, err := parseCompaniesCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Alfa Capital", companies[0].Name)
}

func TestParseCompaniesCSVHeaderCase(t *testing.T) {
	csvData := `Name,URL_Site
Delta Fundos,https://delta.example.com.br
`

	companies, err := parseCompaniesCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Delta Fundos", companies[0].Name)
	assert.Equal(t, "https://delta.example.com.br", companies[0].SiteURL)
}
