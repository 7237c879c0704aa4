package types

import (
	"fmt"
)

// ErrorCode is the closed set of failure kinds shared by every operation in
// the wallet standard. Collaborator errors enter the taxonomy through
// ErrExternal via ExternalError.
type ErrorCode string

const (
	CodeInvalidArguments              ErrorCode = "invalid_arguments"
	CodeInvalidIdentifier             ErrorCode = "invalid_identifier"
	CodeInvalidSignature              ErrorCode = "invalid_signature"
	CodeSigner                        ErrorCode = "signer"
	CodeUnsupportedFeature            ErrorCode = "unsupported_feature"
	CodeUnsupportedIconType           ErrorCode = "unsupported_icon_type"
	CodeUnsupportedTransactionVersion ErrorCode = "unsupported_transaction_version"
	CodeWalletAccount                 ErrorCode = "wallet_account"
	CodeWalletConfig                  ErrorCode = "wallet_config"
	CodeWalletConnection              ErrorCode = "wallet_connection"
	CodeWalletDecrypt                 ErrorCode = "wallet_decrypt"
	CodeWalletDisconnected            ErrorCode = "wallet_disconnected"
	CodeWalletDisconnection           ErrorCode = "wallet_disconnection"
	CodeWalletEncrypt                 ErrorCode = "wallet_encrypt"
	CodeWalletKeypair                 ErrorCode = "wallet_keypair"
	CodeWalletLoad                    ErrorCode = "wallet_load"
	CodeWalletNotReady                ErrorCode = "wallet_not_ready"
	CodeWalletPublicKey               ErrorCode = "wallet_public_key"
	CodeWalletSendTransaction         ErrorCode = "wallet_send_transaction"
	CodeWalletSignIn                  ErrorCode = "wallet_sign_in"
	CodeWalletSignInFields            ErrorCode = "wallet_sign_in_fields"
	CodeWalletSignMessage             ErrorCode = "wallet_sign_message"
	CodeWalletSignTransaction         ErrorCode = "wallet_sign_transaction"
	CodeWalletTimeout                 ErrorCode = "wallet_timeout"
	CodeWalletWindowBlocked           ErrorCode = "wallet_window_blocked"
	CodeWalletWindowClosed            ErrorCode = "wallet_window_closed"
	CodeDeserialization               ErrorCode = "deserialization"
	CodeExternal                      ErrorCode = "external"
)

// WalletError is the one error type returned by every fallible wallet
// operation. It carries enough context to render a user-facing message
// without further lookups. Two WalletErrors match under errors.Is when their
// codes are equal, so the exported sentinels below can be used as targets.
type WalletError struct {
	Code ErrorCode
	// Feature and Wallet are set for CodeUnsupportedFeature.
	Feature string
	Wallet  string
	// Message carries free text for the parameterized members.
	Message string
}

func (e *WalletError) Error() string {
	switch e.Code {
	case CodeInvalidArguments:
		return "the arguments provided are not valid"
	case CodeInvalidIdentifier:
		return fmt.Sprintf("the identifier could not be parsed: %s", e.Message)
	case CodeInvalidSignature:
		return "the signature is not valid"
	case CodeSigner:
		return fmt.Sprintf("signer: %s", e.Message)
	case CodeUnsupportedFeature:
		return fmt.Sprintf("the requested feature: `%s` is not supported for this wallet: `%s`", e.Feature, e.Wallet)
	case CodeUnsupportedIconType:
		return "icon type is not supported"
	case CodeUnsupportedTransactionVersion:
		return "the transaction version is not supported by this wallet"
	case CodeWalletAccount:
		return "wallet account not connected"
	case CodeWalletConfig:
		return "the wallet configuration is invalid"
	case CodeWalletConnection:
		return e.render("an error occurred while connecting to the wallet")
	case CodeWalletDecrypt:
		return e.render("could not decrypt the provided data")
	case CodeWalletDisconnected:
		return "action can't be performed because the wallet is disconnected"
	case CodeWalletDisconnection:
		return e.render("error while disconnecting wallet")
	case CodeWalletEncrypt:
		return e.render("could not encrypt the provided data")
	case CodeWalletKeypair:
		return "wallet keypair is invalid"
	case CodeWalletLoad:
		return "error loading the wallet"
	case CodeWalletNotReady:
		return "the wallet is not yet ready"
	case CodeWalletPublicKey:
		return "invalid wallet public key"
	case CodeWalletSendTransaction:
		return e.render("wallet send transaction failed")
	case CodeWalletSignIn:
		return e.render("wallet sign in failed")
	case CodeWalletSignInFields:
		return fmt.Sprintf("wallet sign in fields: %s", e.Message)
	case CodeWalletSignMessage:
		return e.render("wallet sign message failed")
	case CodeWalletSignTransaction:
		return e.render("wallet sign transaction failed")
	case CodeWalletTimeout:
		return "wallet timeout"
	case CodeWalletWindowBlocked:
		return "wallet window blocked"
	case CodeWalletWindowClosed:
		return "wallet window closed"
	case CodeDeserialization:
		return fmt.Sprintf("an error occurred during deserialization: %s", e.Message)
	case CodeExternal:
		return e.Message
	default:
		return string(e.Code)
	}
}

func (e *WalletError) render(base string) string {
	if e.Message == "" {
		return base
	}
	return base + ": " + e.Message
}

// Is matches by code so that wrapped and parameterized instances compare
// equal to the sentinels.
func (e *WalletError) Is(target error) bool {
	t, ok := target.(*WalletError)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of the error carrying extra free text.
func (e *WalletError) WithMessage(msg string) *WalletError {
	cp := *e
	cp.Message = msg
	return &cp
}

var (
	ErrInvalidArguments              = &WalletError{Code: CodeInvalidArguments}
	ErrInvalidSignature              = &WalletError{Code: CodeInvalidSignature}
	ErrUnsupportedIconType           = &WalletError{Code: CodeUnsupportedIconType}
	ErrUnsupportedTransactionVersion = &WalletError{Code: CodeUnsupportedTransactionVersion}
	ErrWalletAccount                 = &WalletError{Code: CodeWalletAccount}
	ErrWalletConfig                  = &WalletError{Code: CodeWalletConfig}
	ErrWalletConnection              = &WalletError{Code: CodeWalletConnection}
	ErrWalletDecrypt                 = &WalletError{Code: CodeWalletDecrypt}
	ErrWalletDisconnected            = &WalletError{Code: CodeWalletDisconnected}
	ErrWalletDisconnection           = &WalletError{Code: CodeWalletDisconnection}
	ErrWalletEncrypt                 = &WalletError{Code: CodeWalletEncrypt}
	ErrWalletKeypair                 = &WalletError{Code: CodeWalletKeypair}
	ErrWalletLoad                    = &WalletError{Code: CodeWalletLoad}
	ErrWalletNotReady                = &WalletError{Code: CodeWalletNotReady}
	ErrWalletPublicKey               = &WalletError{Code: CodeWalletPublicKey}
	ErrWalletSendTransaction         = &WalletError{Code: CodeWalletSendTransaction}
	ErrWalletSignIn                  = &WalletError{Code: CodeWalletSignIn}
	ErrWalletSignMessage             = &WalletError{Code: CodeWalletSignMessage}
	ErrWalletSignTransaction         = &WalletError{Code: CodeWalletSignTransaction}
	ErrWalletTimeout                 = &WalletError{Code: CodeWalletTimeout}
	ErrWalletWindowBlocked           = &WalletError{Code: CodeWalletWindowBlocked}
	ErrWalletWindowClosed            = &WalletError{Code: CodeWalletWindowClosed}
)

// UnsupportedFeatureError reports that wallet does not expose feature.
func UnsupportedFeatureError(feature, wallet string) *WalletError {
	return &WalletError{Code: CodeUnsupportedFeature, Feature: feature, Wallet: wallet}
}

// SignerError wraps a failure reported by the underlying signer.
func SignerError(msg string) *WalletError {
	return &WalletError{Code: CodeSigner, Message: msg}
}

// InvalidIdentifierError reports an identifier that could not be parsed.
func InvalidIdentifierError(identifier string) *WalletError {
	return &WalletError{Code: CodeInvalidIdentifier, Message: identifier}
}

// SignInFieldsError reports invalid sign-in fields.
func SignInFieldsError(msg string) *WalletError {
	return &WalletError{Code: CodeWalletSignInFields, Message: msg}
}

// DeserializationError reports a failure decoding a descriptor or payload.
func DeserializationError(msg string) *WalletError {
	return &WalletError{Code: CodeDeserialization, Message: msg}
}

// ExternalError admits a collaborator-defined error into the taxonomy. Only
// the textual rendering is preserved. A nil error maps to nil.
func ExternalError(err error) *WalletError {
	if err == nil {
		return nil
	}
	if w, ok := err.(*WalletError); ok {
		return w
	}
	return &WalletError{Code: CodeExternal, Message: err.Error()}
}
