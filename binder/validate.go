/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package binder

import (
	"dirpx.dev/rolx/apis"
	"dirpx.dev/rolx/errors"
	"dirpx.dev/rolx/utils/identity"
)

// validate checks a (player, role) pair for Bind and returns the role.
func validate(player, role any) (apis.Role, error) {
	if player == nil {
		return nil, errors.Validation(errors.ErrNilPlayer, player, role)
	}
	if role == nil {
		return nil, errors.Validation(errors.ErrNilRole, player, role)
	}

	r, ok := role.(apis.Role)
	if !ok {
		return nil, errors.Validation(errors.ErrNotRole, player, role)
	}
	if err := identity.Check(role); err != nil {
		return nil, errors.Validation(err, player, role)
	}

	pk, pok := identity.KeyOf(player)
	rk, _ := identity.KeyOf(role)
	if pok && pk.SameAddress(rk) {
		return nil, errors.Validation(errors.ErrSelfBinding, player, role)
	}
	if _, ok := player.(apis.Role); ok {
		return nil, errors.Validation(errors.ErrPlayerIsRole, player, role)
	}
	if err := identity.Check(player); err != nil {
		return nil, errors.Validation(err, player, role)
	}
	return r, nil
}

// validateUnbind only rejects absent arguments; any other pair that is not
// bound is a silent no-op.
func validateUnbind(player, role any) error {
	if player == nil {
		return errors.Validation(errors.ErrNilPlayer, player, role)
	}
	if role == nil {
		return errors.Validation(errors.ErrNilRole, player, role)
	}
	return nil
}
