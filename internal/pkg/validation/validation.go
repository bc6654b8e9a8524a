package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	apperror "restoque/internal/errors"
)

// Validator valida structs de entrada contra as tags `validate` e
// traduz as falhas para ValidationError com detalhamento por campo.
// As operações de transição nunca recebem um payload que não passou aqui.
type Validator struct {
	v *validator.Validate
}

// New cria um Validator com as validações padrão da biblioteca.
func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Struct valida o payload e retorna nil ou um ValidationError por campo.
func (val *Validator) Struct(s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// Erro do próprio validador (struct inválida, não payload inválido).
		return apperror.NewInternalError("Falha ao validar payload.", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = mensagem(fe)
	}

	return apperror.NewFieldValidationError("Um ou mais campos são inválidos.", fields)
}

// mensagem produz a mensagem por campo para as tags usadas no projeto.
func mensagem(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "uuid":
		return "deve ser um UUID válido"
	case "email":
		return "deve ser um e-mail válido"
	case "min":
		return fmt.Sprintf("valor mínimo: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("deve ser maior que %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("deve ser um de: %s", fe.Param())
	case "dive":
		return "lista inválida"
	}
	return fmt.Sprintf("inválido (%s)", fe.Tag())
}
