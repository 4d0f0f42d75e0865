/* main_test.go
 * Contains unit tests for main.go and utils.go functions
 * Authors: Zachary Bower
 */

package main

import (
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to restore the logger flags changed by setupLogging
func keepLogFlags(t *testing.T) {
	t.Helper()
	flags := log.Flags()
	t.Cleanup(func() { log.SetFlags(flags) })
}

// region setupLogging tests

// TestSetupLogging_InvalidEnv tests an invalid DEBUG value is rejected unless the flag already enables debug
func TestSetupLogging_InvalidEnv(t *testing.T) {
	keepLogFlags(t)
	t.Setenv("DEBUG", "maybe")

	err := setupLogging(false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid DEBUG value "maybe"`)
	assert.NoError(t, setupLogging(true))
}

// TestSetupLogging_EnvEnablesDebug tests DEBUG=TRUE turns on file and line numbers
func TestSetupLogging_EnvEnablesDebug(t *testing.T) {
	keepLogFlags(t)
	t.Setenv("DEBUG", "TRUE")

	require.NoError(t, setupLogging(false))

	assert.Equal(t, log.LstdFlags|log.Lshortfile, log.Flags())
}

// TestSetupLogging_FlagOverridesEnv tests the --debug flag wins over DEBUG=false
func TestSetupLogging_FlagOverridesEnv(t *testing.T) {
	keepLogFlags(t)
	t.Setenv("DEBUG", "false")

	require.NoError(t, setupLogging(true))

	assert.Equal(t, log.LstdFlags|log.Lshortfile, log.Flags())
}

// TestSetupLogging_Default tests logging stays plain without the flag or DEBUG
func TestSetupLogging_Default(t *testing.T) {
	keepLogFlags(t)
	t.Setenv("DEBUG", "")

	require.NoError(t, setupLogging(false))

	assert.Equal(t, log.LstdFlags, log.Flags())
}

// endregion

// region convertStrToBool tests

// TestConvertStrToBool_True tests converting "true" string
func TestConvertStrToBool_True(t *testing.T) {
	result, err := convertStrToBool("true")

	assert.NoError(t, err)
	assert.True(t, result)
}

// TestConvertStrToBool_False tests converting "false" string
func TestConvertStrToBool_False(t *testing.T) {
	result, err := convertStrToBool("false")

	assert.NoError(t, err)
	assert.False(t, result)
}

// TestConvertStrToBool_CaseInsensitiveTrue tests case-insensitive "TRUE"
func TestConvertStrToBool_CaseInsensitiveTrue(t *testing.T) {
	result, err := convertStrToBool("TRUE")

	assert.NoError(t, err)
	assert.True(t, result)
}

// TestConvertStrToBool_CaseInsensitiveFalse tests case-insensitive "FALSE"
func TestConvertStrToBool_CaseInsensitiveFalse(t *testing.T) {
	result, err := convertStrToBool("FALSE")

	assert.NoError(t, err)
	assert.False(t, result)
}

// TestConvertStrToBool_MixedCase tests mixed case "TrUe"
func TestConvertStrToBool_MixedCase(t *testing.T) {
	result, err := convertStrToBool("TrUe")

	assert.NoError(t, err)
	assert.True(t, result)
}

// TestConvertStrToBool_WithWhitespace tests string with leading/trailing whitespace
func TestConvertStrToBool_WithWhitespace(t *testing.T) {
	result, err := convertStrToBool("  true  ")

	assert.NoError(t, err)
	assert.True(t, result)
}

// TestConvertStrToBool_InvalidString tests invalid boolean string
func TestConvertStrToBool_InvalidString(t *testing.T) {
	_, err := convertStrToBool("yes")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid boolean string")
}

// TestConvertStrToBool_EmptyString tests empty string
func TestConvertStrToBool_EmptyString(t *testing.T) {
	_, err := convertStrToBool("")

	assert.Error(t, err)
}

// TestConvertStrToBool_NumberString tests numeric string
func TestConvertStrToBool_NumberString(t *testing.T) {
	_, err := convertStrToBool("1")

	assert.Error(t, err)
}

// TestConvertStrToBool_OnlyWhitespace tests string with only whitespace
func TestConvertStrToBool_OnlyWhitespace(t *testing.T) {
	_, err := convertStrToBool("   ")

	assert.Error(t, err)
}

// endregion
