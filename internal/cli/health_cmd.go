// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// health_cmd.go - Health tracker commands for medibot.
//
// Commands:
//
//	bmi --weight KG --height CM          Body mass index from the backend
//	mood --score N [--tag T]... TEXT     Mood entry and insight
//	cbt [--tried S] [--outcome S] TEXT   CBT exercises for a concern
//	symptom --symptom S --severity N     Log a symptom (see flags below)
//	image PATH                           Analyze a medical image
//
// Symptom flags:
//
//	--duration D  --trigger T (repeatable)  --medications M  --notes N
//	--date YYYY-MM-DDTHH:MM (default: now, UTC)
//
// Examples:
//
//	medibot bmi --weight 70 --height 175
//	medibot mood --score 3 --tag work "Stressed about deadlines"
//	medibot cbt --tried "journaling" "I keep worrying about my health"
//	medibot symptom --symptom headache --severity 6 --trigger screen
//	medibot image ~/Pictures/rash.png
package cli

import (
	"context"
	"fmt"

	"github.com/medibot/medibot-tui/internal/assistant"
	"github.com/medibot/medibot-tui/internal/tracker"
)

// =============================================================================
// BMI
// =============================================================================

// RunBMI handles "medibot bmi".
func (a *App) RunBMI(ctx context.Context, p *ArgParser) error {
	form := tracker.BMIForm{
		Weight: p.FirstFlag("weight", "w"),
		Height: p.FirstFlag("height", "H"),
	}
	// Positional form: medibot bmi 70 175
	if form.Weight == "" && form.Height == "" && p.PositionalCount() == 2 {
		form.Weight, form.Height = p.Positional(0), p.Positional(1)
	}

	res, err := a.Tracker.CalculateBMI(ctx, form)
	if err != nil {
		return err
	}

	data := BMIData{BMI: res.BMI, Category: res.Category, Advice: res.Advice(), Failed: res.Failed}
	if err := a.emit("bmi", data, func() { a.printBMI(res) }); err != nil {
		return err
	}
	if res.Failed {
		return &CommandError{Command: "bmi", Action: "calculate", Err: res.Err}
	}
	return nil
}

func (a *App) printBMI(res tracker.BMIResult) {
	if res.Failed {
		fmt.Fprintln(a.Err, ErrorStyle.Render(tracker.BMIErrorText))
		return
	}
	fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("Your BMI:"), SuccessStyle.Render(res.Format()))
	fmt.Fprintf(a.Out, "%s%s\n", RenderLabel("Category:"), res.Category)
	if advice := res.Advice(); advice != "" {
		fmt.Fprintln(a.Out)
		fmt.Fprintln(a.Out, WrapText(advice, GetTerminalWidth()))
	}
}

// =============================================================================
// MOOD / CBT
// =============================================================================

// RunMood handles "medibot mood".
func (a *App) RunMood(ctx context.Context, p *ArgParser) error {
	form := tracker.NewMoodForm()
	form.Description = p.FlagOrDefault("description", JoinPositionalArgs(p, 0))
	if p.HasFlag("score") {
		score, err := p.FlagInt("score")
		if err != nil {
			return err
		}
		form.Score = score
	}
	for _, t := range p.Values("tag") {
		form.AddTag(t)
	}

	ins, err := a.Tracker.TrackMood(ctx, form)
	if err != nil {
		return err
	}
	return a.emitInsight("mood", ins)
}

// RunCBT handles "medibot cbt".
func (a *App) RunCBT(ctx context.Context, p *ArgParser) error {
	form := tracker.CBTForm{
		Concern:         p.FlagOrDefault("concern", JoinPositionalArgs(p, 0)),
		TriedStrategies: p.Flag("tried"),
		DesiredOutcome:  p.Flag("outcome"),
	}

	ins, err := a.Tracker.CBTExercises(ctx, form)
	if err != nil {
		return err
	}
	return a.emitInsight("cbt", ins)
}

func (a *App) emitInsight(command string, ins tracker.Insight) error {
	data := InsightData{Text: ins.Text, Type: ins.Type, Failed: ins.Failed}
	if err := a.emit(command, data, func() {
		if ins.Failed {
			fmt.Fprintln(a.Err, ErrorStyle.Render(ins.Text))
			return
		}
		fmt.Fprintln(a.Out, a.renderMarkdown(ins.Markdown()))
	}); err != nil {
		return err
	}
	if ins.Failed {
		return &CommandError{Command: command, Action: "submit", Err: ins.Err}
	}
	return nil
}

// =============================================================================
// SYMPTOM
// =============================================================================

// RunSymptom handles "medibot symptom".
func (a *App) RunSymptom(ctx context.Context, p *ArgParser) error {
	form := tracker.NewSymptomForm(a.Now())
	form.Symptom = p.FlagOrDefault("symptom", JoinPositionalArgs(p, 0))
	if d := p.Flag("date"); d != "" {
		form.Date = d
	}
	if p.HasFlag("severity") {
		sev, err := p.FlagInt("severity")
		if err != nil {
			return err
		}
		form.Severity = sev
	}
	form.Duration = p.Flag("duration")
	form.Medications = p.Flag("medications")
	form.Notes = p.Flag("notes")
	for _, t := range p.Values("trigger") {
		form.AddTrigger(t)
	}

	res, err := a.Tracker.TrackSymptom(ctx, form)
	if err != nil {
		return err
	}

	if err := a.emit("symptom", SymptomData{OK: res.OK, ID: res.ID}, func() {
		if res.OK {
			a.info("%s", SuccessStyle.Render(tracker.SymptomSavedText))
			return
		}
		fmt.Fprintln(a.Err, ErrorStyle.Render(tracker.SymptomErrorText))
	}); err != nil {
		return err
	}

	switch {
	case res.Failed:
		return &CommandError{Command: "symptom", Action: "save", Err: res.Err}
	case !res.OK:
		return &CommandError{Command: "symptom", Action: "save", Err: fmt.Errorf("entry was not stored")}
	}
	return nil
}

// =============================================================================
// IMAGE
// =============================================================================

// RunImage handles "medibot image".
func (a *App) RunImage(ctx context.Context, p *ArgParser) error {
	path := JoinPositionalArgs(p, 0)
	if path == "" {
		return ErrMissingArgument("image path", "medibot image PATH")
	}

	if a.Interactive && !a.Quiet && !a.JSON {
		fmt.Fprintln(a.Err, DimStyle.Render(assistant.ImagePlaceholder))
	}

	reply, err := a.Assistant.AnalyzeImageFile(ctx, expandPath(path))
	if err != nil {
		return &CommandError{Command: "image", Action: "read", Err: err}
	}

	text := reply.Message.Text
	data := AskData{Query: path, Answer: text, Failed: reply.Failed}
	if err := a.emit("image", data, func() { a.printReply(text, reply.Failed, false) }); err != nil {
		return err
	}
	if reply.Failed {
		return &CommandError{Command: "image", Action: "analyze", Err: reply.Err}
	}
	return nil
}
