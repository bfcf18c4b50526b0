package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validMatchJSON = `{
  "overallScore": 87,
  "moduleScore": 95,
  "experienceScore": 80,
  "industryScore": 75,
  "certificationScore": 85,
  "strengths": ["FICO depth", "S/4HANA migration"],
  "gaps": ["No retail experience"],
  "recommendation": "Strong Match",
  "summary": "Very close fit on modules and seniority.",
  "nextSteps": "Schedule technical screen."
}`

func validResumeJSON() string {
	return `{
  "name": "Jane Roe",
  "email": "jane@example.com",
  "phone": "555-0100",
  "location": "Dallas TX",
  "yearsExperience": 5,
  "sapModules": ["SAP FICO", "SAP MM"],
  "otherErp": [],
  "certifications": ["Certified SAP Consultant"],
  "industries": ["Manufacturing"],
  "visaStatus": "H1B",
  "availability": "Immediate",
  "rateExpectation": "$85/hr",
  "employmentType": "Contract",
  "summary": "SAP FICO consultant."
}`
}

func TestDecodeResumeValid(t *testing.T) {
	resume, err := DecodeResume(validResumeJSON())
	require.NoError(t, err)

	assert.Equal(t, 5, resume.YearsExperience)
	assert.Equal(t, []string{"SAP FICO", "SAP MM"}, resume.SapModules)
	assert.Equal(t, "H1B", resume.VisaStatus)
	assert.Equal(t, "$85/hr", resume.RateExpectation)
}

func TestDecodeResumeStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + validResumeJSON() + "\n```"

	resume, err := DecodeResume(fenced)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", resume.Name)
}

func TestDecodeResumeMissingFieldFailsClosed(t *testing.T) {
	_, err := DecodeResume(`{"name":"Jane Roe"}`)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "missing field")
}

func TestDecodeResumeExtraFieldFailsClosed(t *testing.T) {
	raw := validResumeJSON()
	raw = raw[:len(raw)-2] + `,
  "confidence": 0.9
}`

	_, err := DecodeResume(raw)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "confidence")
}

func TestDecodeResumeMistypedFieldFailsClosed(t *testing.T) {
	raw := replaceOnce(t, validResumeJSON(), `"yearsExperience": 5`, `"yearsExperience": "five"`)

	_, err := DecodeResume(raw)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeResumeNegativeYearsFailsValidation(t *testing.T) {
	raw := replaceOnce(t, validResumeJSON(), `"yearsExperience": 5`, `"yearsExperience": -1`)

	_, err := DecodeResume(raw)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeResumeNotJSONFailsClosed(t *testing.T) {
	_, err := DecodeResume("I could not find a resume in the text.")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeJobValid(t *testing.T) {
	job, err := DecodeJob(`{
  "title": "SAP FICO Consultant",
  "client": "Acme",
  "location": "Remote",
  "type": "Contract",
  "duration": "6 months",
  "durationMonths": 6,
  "rate": "$95/hr",
  "rateNumeric": 95,
  "requiredModules": ["SAP FICO"],
  "preferredModules": ["SAP MM"],
  "requiredYears": 5,
  "requiredCerts": [],
  "industries": ["Retail"],
  "visaSponsorship": "No",
  "remote": "Yes",
  "summary": "Contract FICO role."
}`)
	require.NoError(t, err)

	assert.Equal(t, "Contract", job.Type)
	assert.Equal(t, 6, job.DurationMonths)
	assert.InDelta(t, 95.0, job.RateNumeric, 0.001)
}

func TestDecodeJobRejectsUnknownType(t *testing.T) {
	raw := `{
  "title": "SAP FICO Consultant",
  "client": "Acme",
  "location": "Remote",
  "type": "Internship",
  "duration": "6 months",
  "durationMonths": 6,
  "rate": "$95/hr",
  "rateNumeric": 95,
  "requiredModules": ["SAP FICO"],
  "preferredModules": [],
  "requiredYears": 5,
  "requiredCerts": [],
  "industries": [],
  "visaSponsorship": "No",
  "remote": "Yes",
  "summary": "Contract FICO role."
}`

	_, err := DecodeJob(raw)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeMatchResultValid(t *testing.T) {
	result, err := DecodeMatchResult(validMatchJSON)
	require.NoError(t, err)

	assert.Equal(t, 87, result.OverallScore)
	assert.Equal(t, RecommendationStrong, result.Recommendation)
	assert.Equal(t, []string{"FICO depth", "S/4HANA migration"}, result.Strengths)
}

func TestDecodeMatchResultScoreBounds(t *testing.T) {
	over := replaceOnce(t, validMatchJSON, `"moduleScore": 95`, `"moduleScore": 101`)
	_, err := DecodeMatchResult(over)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)

	under := replaceOnce(t, validMatchJSON, `"industryScore": 75`, `"industryScore": -3`)
	_, err = DecodeMatchResult(under)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeMatchResultRejectsFractionalScore(t *testing.T) {
	raw := replaceOnce(t, validMatchJSON, `"overallScore": 87`, `"overallScore": 87.5`)

	_, err := DecodeMatchResult(raw)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeMatchResultRejectsUnknownRecommendation(t *testing.T) {
	raw := replaceOnce(t, validMatchJSON, `"recommendation": "Strong Match"`, `"recommendation": "Hire Immediately"`)

	_, err := DecodeMatchResult(raw)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestStripFences(t *testing.T) {
	inputs := []string{
		"{\"a\":1}",
		"```json\n{\"a\":1}\n```",
		"```\n{\"a\":1}\n```",
		"  ```json\n{\"a\":1}\n```\n  ",
		"`{\"a\":1}`",
	}

	for _, in := range inputs {
		assert.Equal(t, `{"a":1}`, StripFences(in))
	}
}

func replaceOnce(t *testing.T, s, old, repl string) string {
	t.Helper()
	require.Contains(t, s, old)
	return strings.Replace(s, old, repl, 1)
}
