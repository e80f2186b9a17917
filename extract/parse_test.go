package extract_test

import (
	"testing"

	"github.com/fwojciec/apigraph"
	"github.com/fwojciec/apigraph/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validObjectJSON = `{
	"id": "create_user",
	"step_name": "Create User",
	"action": "create_user",
	"inputs": {
		"email": {"type": "string", "description": "User email address"}
	},
	"prerequisites": {
		"account": "User must have a registered account"
	},
	"api_config": {
		"url": "https://api.example.com/v1/users",
		"method": "POST"
	},
	"response_schema": {"type": "object"}
}`

func TestParse_SingleObject(t *testing.T) {
	t.Parallel()

	actions, err := extract.Parse(validObjectJSON)
	require.NoError(t, err)
	require.Len(t, actions, 1)

	a := actions[0]
	assert.Equal(t, "create_user", a.ID)
	assert.Equal(t, "Create User", a.StepName)
	assert.Equal(t, "create_user", a.Name)
	assert.Equal(t, "string", a.Inputs["email"].Type)
	assert.Equal(t, "User must have a registered account", a.Prerequisites["account"].Text)
	assert.False(t, a.Prerequisites["account"].Resolved())
	assert.Equal(t, "POST", a.APIConfig.Method)
}

func TestParse_StripsMarkdownFence(t *testing.T) {
	t.Parallel()

	fenced := "```json\n" + validObjectJSON + "\n```"
	actions, err := extract.Parse(fenced)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "create_user", actions[0].ID)
}

func TestParse_TrimsSurroundingProse(t *testing.T) {
	t.Parallel()

	wrapped := "Here is the extracted action:\n" + validObjectJSON + "\nLet me know if you need anything else."
	actions, err := extract.Parse(wrapped)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "create_user", actions[0].ID)
}

func TestParse_ObjectMissingIDGetsGenerated(t *testing.T) {
	t.Parallel()

	raw := `{
		"step_name": "List Orders",
		"action": "list_orders",
		"api_config": {"url": "https://api.example.com/orders", "method": "GET"}
	}`
	actions, err := extract.Parse(raw)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.NotEmpty(t, actions[0].ID)
}

func TestParse_ObjectMissingRequiredFieldFails(t *testing.T) {
	t.Parallel()

	raw := `{
		"id": "list_orders",
		"step_name": "List Orders",
		"action": "list_orders",
		"api_config": {"url": "", "method": "GET"}
	}`
	_, err := extract.Parse(raw)
	require.Error(t, err)
	assert.Equal(t, apigraph.EINVALID, apigraph.ErrorCode(err))
}

func TestParse_ObjectTemplateEchoRejected(t *testing.T) {
	t.Parallel()

	raw := `{
		"id": "something",
		"step_name": "REPLACE WITH human readable step name",
		"action": "create_user",
		"api_config": {"url": "https://api.example.com/users", "method": "POST"}
	}`
	_, err := extract.Parse(raw)
	require.Error(t, err)
	assert.Equal(t, apigraph.EUNPROCESSABLE, apigraph.ErrorCode(err))
}

func TestParse_ObjectTrailingCommaRepaired(t *testing.T) {
	t.Parallel()

	raw := `{
		"id": "get_user",
		"step_name": "Get User",
		"action": "get_user",
		"api_config": {"url": "https://api.example.com/users/1", "method": "GET",},
	}`
	actions, err := extract.Parse(raw)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "get_user", actions[0].ID)
}

func TestParse_ObjectUnrepairableFails(t *testing.T) {
	t.Parallel()

	_, err := extract.Parse(`{"id": "x", "step_name": }`)
	require.Error(t, err)
	assert.Equal(t, apigraph.EUNPROCESSABLE, apigraph.ErrorCode(err))
}

func TestParse_Array(t *testing.T) {
	t.Parallel()

	raw := `[
		{"id": "a1", "step_name": "One", "action": "get_one", "api_config": {"url": "https://x.test/1", "method": "GET"}},
		{"id": "a2", "step_name": "Two", "action": "get_two", "api_config": {"url": "https://x.test/2", "method": "GET"}}
	]`
	actions, err := extract.Parse(raw)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "a1", actions[0].ID)
	assert.Equal(t, "a2", actions[1].ID)
}

func TestParse_ArrayMissingCommasRepaired(t *testing.T) {
	t.Parallel()

	// Adjacent objects with no separating comma.
	raw := `[
		{"id": "a1", "step_name": "One", "action": "get_one", "api_config": {"url": "https://x.test/1", "method": "GET"}}
		{"id": "a2", "step_name": "Two", "action": "get_two", "api_config": {"url": "https://x.test/2", "method": "GET"}}
	]`
	actions, err := extract.Parse(raw)
	require.NoError(t, err)
	require.Len(t, actions, 2)
}

func TestParse_ArrayTrailingCommaRepaired(t *testing.T) {
	t.Parallel()

	raw := `[
		{"id": "a1", "step_name": "One", "action": "get_one", "api_config": {"url": "https://x.test/1", "method": "GET"}},
	]`
	actions, err := extract.Parse(raw)
	require.NoError(t, err)
	require.Len(t, actions, 1)
}

func TestParse_ArrayFiltersTemplateEchoes(t *testing.T) {
	t.Parallel()

	raw := `[
		{"id": "real", "step_name": "Real", "action": "get_real", "api_config": {"url": "https://x.test/real", "method": "GET"}},
		{"id": "echo", "step_name": "Echo", "action": "get_echo", "api_config": {"url": "REPLACE WITH ACTUAL API url", "method": "GET"}}
	]`
	actions, err := extract.Parse(raw)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "real", actions[0].ID)
}

func TestParse_ArrayFiltersInvalidElements(t *testing.T) {
	t.Parallel()

	raw := `[
		{"id": "ok", "step_name": "OK", "action": "get_ok", "api_config": {"url": "https://x.test/ok", "method": "GET"}},
		{"id": "bad", "step_name": "", "action": "get_bad", "api_config": {"url": "https://x.test/bad", "method": "GET"}}
	]`
	actions, err := extract.Parse(raw)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "ok", actions[0].ID)
}

func TestParse_ArrayReconcilesIDs(t *testing.T) {
	t.Parallel()

	// Three valid elements: one missing an id, two sharing one. All three
	// survive with distinct ids.
	raw := `[
		{"step_name": "One", "action": "get_one", "api_config": {"url": "https://x.test/1", "method": "GET"}},
		{"id": "dup", "step_name": "Two", "action": "get_two", "api_config": {"url": "https://x.test/2", "method": "GET"}},
		{"id": "dup", "step_name": "Three", "action": "get_three", "api_config": {"url": "https://x.test/3", "method": "GET"}}
	]`
	actions, err := extract.Parse(raw)
	require.NoError(t, err)
	require.Len(t, actions, 3)

	ids := make(map[string]struct{})
	for _, a := range actions {
		assert.NotEmpty(t, a.ID)
		ids[a.ID] = struct{}{}
	}
	assert.Len(t, ids, 3)
	assert.Equal(t, "dup", actions[1].ID, "first holder keeps the contested id")
}

func TestParse_ArrayAllEchoesYieldsEmpty(t *testing.T) {
	t.Parallel()

	raw := `[
		{"id": "e", "step_name": "REPLACE WITH human readable step name", "action": "x", "api_config": {"url": "https://x.test", "method": "GET"}}
	]`
	actions, err := extract.Parse(raw)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestParse_ArrayUnrepairableFails(t *testing.T) {
	t.Parallel()

	_, err := extract.Parse(`["id": }]`)
	require.Error(t, err)
	assert.Equal(t, apigraph.EUNPROCESSABLE, apigraph.ErrorCode(err))
}

func TestParseActionChoice(t *testing.T) {
	t.Parallel()

	t.Run("ID", func(t *testing.T) {
		t.Parallel()
		id, err := extract.ParseActionChoice(`{"actionId": "create_user"}`)
		require.NoError(t, err)
		assert.Equal(t, "create_user", id)
	})

	t.Run("Null", func(t *testing.T) {
		t.Parallel()
		id, err := extract.ParseActionChoice(`{"actionId": null}`)
		require.NoError(t, err)
		assert.Equal(t, "", id)
	})

	t.Run("Fenced", func(t *testing.T) {
		t.Parallel()
		id, err := extract.ParseActionChoice("```json\n{\"actionId\": \"login_user\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, "login_user", id)
	})

	t.Run("Prose", func(t *testing.T) {
		t.Parallel()
		id, err := extract.ParseActionChoice(`The best match is {"actionId": "register_account"} as explained above.`)
		require.NoError(t, err)
		assert.Equal(t, "register_account", id)
	})

	t.Run("Garbage", func(t *testing.T) {
		t.Parallel()
		_, err := extract.ParseActionChoice(`not even close`)
		require.Error(t, err)
		assert.Equal(t, apigraph.EUNPROCESSABLE, apigraph.ErrorCode(err))
	})
}
