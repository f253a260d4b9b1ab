package command

import (
	"bufio"
	"errors"
	"strconv"
	"strings"

	"github.com/rescuerunner/runnerboard"
)

var (
	ErrMissingArgument = errors.New("missing argument")
	ErrInvalidArgument = errors.New("invalid argument")
)

var DefaultLimit uint = runnerboard.DefaultLimit

// TopArgs asks for the first Limit entries of the board.
type TopArgs struct {
	Limit uint
}

func (args *TopArgs) ParseArg(s string) error {
	scanner := bufio.NewScanner(strings.NewReader(s))
	scanner.Split(bufio.ScanWords)

	if ok := scanner.Scan(); !ok {
		err := scanner.Err()
		if err != nil {
			return err
		}
		args.Limit = DefaultLimit
	} else {
		parsedLimit, err := strconv.Atoi(scanner.Text())
		if err != nil {
			return ErrInvalidArgument
		}
		if parsedLimit < 1 {
			return ErrInvalidArgument
		}
		args.Limit = uint(parsedLimit)
	}

	return nil
}

// RankArgs asks for the standing of one player.
type RankArgs struct {
	Identity string
}

func (args *RankArgs) ParseArg(s string) error {
	scanner := bufio.NewScanner(strings.NewReader(s))
	scanner.Split(bufio.ScanWords)
	if ok := scanner.Scan(); !ok {
		err := scanner.Err()
		if err == nil {
			return ErrMissingArgument
		}
		return err
	}

	args.Identity = runnerboard.NormalizeIdentity(scanner.Text())
	return nil
}
