package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add      func(AddArgs) (Result, error)
	Complete func(SelectArgs) (Result, error)
	Delete   func(SelectArgs) (Result, error)
	Update   func(UpdateArgs) (Result, error)
	Sort     func(SortArgs) (Result, error)
	Find     func(FindArgs) (Result, error)
	Clear    func() (Result, error)
}

func missing(name string) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: name + " handler not configured"}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing("add")
		}
		return handlers.Add(*cmd.Add)
	case TypeComplete:
		if handlers.Complete == nil {
			return Result{}, missing("done")
		}
		return handlers.Complete(*cmd.Complete)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, missing("delete")
		}
		return handlers.Delete(*cmd.Delete)
	case TypeUpdate:
		if handlers.Update == nil {
			return Result{}, missing("update")
		}
		return handlers.Update(*cmd.Update)
	case TypeSort:
		if handlers.Sort == nil {
			return Result{}, missing("sort")
		}
		return handlers.Sort(*cmd.Sort)
	case TypeFind:
		if handlers.Find == nil {
			return Result{}, missing("find")
		}
		return handlers.Find(*cmd.Find)
	case TypeClear:
		if handlers.Clear == nil {
			return Result{}, missing("clear")
		}
		return handlers.Clear()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
