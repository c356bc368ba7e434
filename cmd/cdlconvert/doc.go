// Package main hosts the cdlconvert CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into batch conversions,
// single file inspection, history queries against the local run log, and
// configuration scaffolding. Configuration resolution and logger setup live
// in commandContext so subcommands only deal with their own flags and output.
//
// Keep this package lean: conversion behavior belongs in internal/convert and
// internal/formats, and commands here only surface it.
package main
