package app

import (
	"github.com/fd1az/circlepath-bot/business/circlepath/domain"
	marketDomain "github.com/fd1az/circlepath-bot/business/market/domain"
	"github.com/fd1az/circlepath-bot/internal/apperror"
)

// BuildInstructions derives the instruction chain for a circular path. Each
// hop looks up the transition between adjacent assets and determines the
// action from which side of the symbol the held asset sits on; the final
// element is the synthetic terminal instruction.
//
// A missing transition or an undeterminable action fails the whole path.
// A graph-derived path should never trigger either.
func BuildInstructions(g *domain.Graph, path []string) ([]domain.Instruction, error) {
	instructions := make([]domain.Instruction, 0, len(path))

	for i := 0; i < len(path)-1; i++ {
		held, next := path[i], path[i+1]

		tr, ok := g.FindTransition(held, next)
		if !ok {
			return nil, apperror.New(apperror.CodeTransitionNotFound,
				apperror.WithContext(held+" -> "+next))
		}

		action := tr.Symbol.ActionFor(held)
		if action == marketDomain.ActionNone {
			return nil, apperror.New(apperror.CodeActionUndefined,
				apperror.WithContext(tr.Symbol.Symbol+" holding "+held))
		}

		instructions = append(instructions, domain.Instruction{
			Symbol:  tr.Symbol,
			Action:  action,
			IsStart: i == 0,
		})
	}

	instructions = append(instructions, domain.Instruction{
		Action: marketDomain.ActionNone,
		IsEnd:  true,
	})

	return instructions, nil
}
