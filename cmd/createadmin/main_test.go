package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlog/spendlog/internal/model"
	"github.com/spendlog/spendlog/internal/service"
)

type fakeCreator struct {
	users  map[string]bool
	inputs []service.RegisterInput
	closed int
	err    error
}

func (f *fakeCreator) CreateAdmin(_ context.Context, input service.RegisterInput) (*model.User, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.users[input.Username] {
		return nil, service.ErrUsernameTaken
	}
	f.users[input.Username] = true
	return &model.User{ID: "01HZX", Username: input.Username, Email: input.Email, IsStaff: true}, nil
}

// useFakeCreator swaps openCreator for the duration of the test.
func useFakeCreator(t *testing.T) *fakeCreator {
	t.Helper()
	fake := &fakeCreator{users: map[string]bool{}}
	orig := openCreator
	openCreator = func(context.Context, string) (adminCreator, func(), error) {
		return fake, func() { fake.closed++ }, nil
	}
	t.Cleanup(func() { openCreator = orig })
	return fake
}

func TestRun_Success(t *testing.T) {
	fake := useFakeCreator(t)
	stdout, stderr, stdin := new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)

	args := []string{"-user", "root", "-email", "root@example.com", "-password", "secret", "-database-url", "postgres://x"}
	require.NoError(t, run(args, stdin, stdout, stderr))

	assert.Contains(t, stdout.String(), "Staff user root created successfully")
	require.Len(t, fake.inputs, 1)
	assert.Equal(t, "root@example.com", fake.inputs[0].Email)
	assert.Equal(t, 1, fake.closed)
}

func TestRun_DuplicateUser(t *testing.T) {
	useFakeCreator(t)
	stdout, stderr, stdin := new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)

	args := []string{"-user", "root", "-email", "root@example.com", "-password", "secret", "-database-url", "postgres://x"}
	require.NoError(t, run(args, stdin, stdout, stderr), "first run should succeed")

	err := run(args, stdin, stdout, stderr)
	require.Error(t, err, "expected error on duplicate user")
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_MissingFlags(t *testing.T) {
	fake := useFakeCreator(t)
	stdout, stderr, stdin := new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)

	err := run([]string{"-password", "secret"}, stdin, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags: user, email")
	assert.Contains(t, stdout.String(), "Usage:")
	assert.Empty(t, fake.inputs, "nothing should be created")
}

func TestRun_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	useFakeCreator(t)

	err := run([]string{"-user", "root", "-email", "root@example.com", "-password", "x"},
		new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestRun_InteractivePassword(t *testing.T) {
	fake := useFakeCreator(t)
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	stdin := bytes.NewBufferString("interactive_secret\n")

	args := []string{"-user", "root", "-email", "root@example.com", "-database-url", "postgres://x"}
	require.NoError(t, run(args, stdin, stdout, stderr))

	assert.Contains(t, stdout.String(), "Password: ")
	require.Len(t, fake.inputs, 1)
	assert.Equal(t, "interactive_secret", fake.inputs[0].Password)
}

func TestRun_EmptyPassword(t *testing.T) {
	useFakeCreator(t)

	args := []string{"-user", "root", "-email", "root@example.com", "-database-url", "postgres://x"}
	err := run(args, bytes.NewBufferString("   \n"), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password cannot be empty")
}

func TestRun_ServiceError(t *testing.T) {
	fake := useFakeCreator(t)
	fake.err = service.ErrInvalidEmail

	args := []string{"-user", "root", "-email", "not-an-email", "-password", "x", "-database-url", "postgres://x"}
	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidEmail))
}
