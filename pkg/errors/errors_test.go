// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and the recoverability policy

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/alios-things/aos-cube/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_a_repository",
			code:    errors.ErrNotARepository,
			message: "no working copy in /tmp/x",
			wantStr: "[NOT_A_REPOSITORY] no working copy in /tmp/x",
		},
		{
			name:    "invalid_input_error",
			code:    errors.ErrInvalidInput,
			message: "invalid configuration",
			wantStr: "[INVALID_INPUT] invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}

			if err.Message != tt.message {
				t.Errorf("New() message = %q, want %q", err.Message, tt.message)
			}

			if err.Details == nil {
				t.Error("New() details should be initialized")
			}

			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrUnresolvedComponent, "component %q not found in %s", "foo", "sdk")
	if err.Message != `component "foo" not found in sdk` {
		t.Errorf("Newf() message = %q", err.Message)
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("base error")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrVcsProcess, "git fetch failed")

		if err.Code != errors.ErrVcsProcess {
			t.Errorf("Wrap() code = %v, want %v", err.Code, errors.ErrVcsProcess)
		}

		if err.Wrapped != baseErr {
			t.Error("Wrap() should preserve wrapped error")
		}

		wantStr := "[VCS_PROCESS] git fetch failed: base error"
		if got := err.Error(); got != wantStr {
			t.Errorf("Error() = %q, want %q", got, wantStr)
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		err := errors.Wrap(nil, errors.ErrInternal, "internal error")
		if err != nil {
			t.Error("Wrap(nil) should return nil")
		}
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrVcsProcess, "command failed").
		WithDetail("command", "hg pull").
		WithDetail("exit_code", 255)

	if err.Details["command"] != "hg pull" {
		t.Errorf("WithDetail() command = %v", err.Details["command"])
	}

	if err.Details["exit_code"] != 255 {
		t.Errorf("WithDetail() exit_code = %v", err.Details["exit_code"])
	}
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrReconciliationConflict, "error 1")
	err2 := errors.New(errors.ErrReconciliationConflict, "error 2")
	err3 := errors.New(errors.ErrInternal, "error 3")

	t.Run("same_code_is_equal", func(t *testing.T) {
		if !err1.Is(err2) {
			t.Error("Is() should return true for same code")
		}
	})

	t.Run("different_code_not_equal", func(t *testing.T) {
		if err1.Is(err3) {
			t.Error("Is() should return false for different codes")
		}
	})

	t.Run("works_with_errors_Is", func(t *testing.T) {
		if !stderrors.Is(err1, err2) {
			t.Error("errors.Is() should work with CubeError")
		}
	})
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrManifestNotFound, "no cube.mk"),
			code:     errors.ErrManifestNotFound,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrNotFound, "not found"),
			code:     errors.ErrInternal,
			expected: false,
		},
		{
			name:     "wrapped_error",
			err:      errors.Wrap(stderrors.New("base"), errors.ErrFileAccess, "denied"),
			code:     errors.ErrFileAccess,
			expected: true,
		},
		{
			name:     "non_cube_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrNotFound,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsErrorCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := errors.GetErrorCode(errors.New(errors.ErrDetachedHead, "detached")); got != errors.ErrDetachedHead {
		t.Errorf("GetErrorCode() = %v", got)
	}
	if got := errors.GetErrorCode(stderrors.New("plain")); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode() = %v", got)
	}
	if got := errors.GetErrorCode(nil); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode() = %v", got)
	}
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		code        errors.ErrorCode
		recoverable bool
	}{
		{errors.ErrReconciliationConflict, true},
		{errors.ErrVcsProcess, true},
		{errors.ErrNotARepository, false},
		{errors.ErrDetachedHead, false},
		{errors.ErrLocalRepository, false},
		{errors.ErrManifestNotFound, false},
		{errors.ErrUnresolvedComponent, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := errors.Wrap(errors.New(tt.code, "inner"), errors.ErrInternal, "outer")
			// outer code wins: wrapping changes the classification
			if errors.IsRecoverable(err) {
				t.Errorf("wrapped error should take the outer code")
			}
			if got := errors.IsRecoverable(errors.New(tt.code, "x")); got != tt.recoverable {
				t.Errorf("IsRecoverable(%s) = %v, want %v", tt.code, got, tt.recoverable)
			}
		})
	}
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	fileErr := errors.Wrap(rootCause, errors.ErrFileAccess, "cannot read file")
	configErr := errors.Wrap(fileErr, errors.ErrConfigLoad, "failed to load config")

	t.Run("top_level_has_correct_code", func(t *testing.T) {
		if !errors.IsErrorCode(configErr, errors.ErrConfigLoad) {
			t.Error("Top level should have ErrConfigLoad code")
		}
	})

	t.Run("can_find_middle_error", func(t *testing.T) {
		var cubeErr *errors.CubeError
		if stderrors.As(configErr.Unwrap(), &cubeErr) {
			if !errors.IsErrorCode(cubeErr, errors.ErrFileAccess) {
				t.Error("Middle error should have ErrFileAccess code")
			}
		}
	})

	t.Run("can_find_root_cause", func(t *testing.T) {
		if !stderrors.Is(configErr, rootCause) {
			t.Error("Should find root cause with errors.Is")
		}
	})
}
